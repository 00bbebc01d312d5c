// Package wasmbuild is the Wasm orchestrator (spec §4.5): it hands a
// foreign-language source block to an external build driver and wires
// the resulting .wasm bytes through an optional wasm-opt pass.
package wasmbuild

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"

	decor "github.com/dzfrias/decorous/internal"
	"github.com/dzfrias/decorous/internal/fence"
)

// Symbol is one exported Wasm symbol, using the numeric-only core types
// (spec §4.5: "signatures use the numeric-only Wasm core types").
type Symbol struct {
	Name    string   `json:"name"`
	Params  []string `json:"params"`
	Results []string `json:"results"`
}

// Manifest is what a Driver reports back after a successful build: the
// produced .wasm bytes plus its exported symbol table.
type Manifest struct {
	Wasm    []byte
	Symbols []Symbol
}

// Driver runs one foreign language's build toolchain over a source
// string, producing a .wasm file at outPath. Decorous does not interpret
// language syntax beyond this boundary (spec §4.5).
type Driver interface {
	Build(ctx context.Context, source, outPath string) (Manifest, error)
}

// driverFor maps a fence.Lang to its build toolchain invocation. Every
// entry is a thin os/exec wrapper; Decorous never parses the foreign
// source itself.
func driverFor(lang fence.Lang) (Driver, bool) {
	switch lang {
	case fence.LangC:
		return commandDriver{name: "emcc", args: []string{"-O2", "-s", "STANDALONE_WASM", "-o"}}, true
	case fence.LangCpp:
		return commandDriver{name: "emcc", args: []string{"-O2", "-s", "STANDALONE_WASM", "-x", "c++", "-o"}}, true
	case fence.LangRust:
		return cargoDriver{}, true
	case fence.LangTiny:
		return commandDriver{name: "tinygo", args: []string{"build", "-target", "wasm", "-o"}}, true
	case fence.LangZig:
		return commandDriver{name: "zig", args: []string{"build-exe", "-target", "wasm32-freestanding", "-femit-bin"}}, true
	case fence.LangWat:
		return commandDriver{name: "wat2wasm", args: []string{"-o"}}, true
	case fence.LangGo:
		return goWasmDriver{}, true
	}
	return nil, false
}

// commandDriver is a generic "write source to a temp file, invoke a
// fixed command line with outPath and the temp file appended, read the
// .wasm file back" driver; stdout is not read, so its Manifest carries
// no exported symbols. It covers every toolchain whose invocation is
// `name args... outPath srcfile`.
type commandDriver struct {
	name string
	args []string
}

func (d commandDriver) Build(ctx context.Context, source, outPath string) (Manifest, error) {
	src, err := writeTempSource(source, d.name)
	if err != nil {
		return Manifest{}, decor.IoError("wasmbuild", err)
	}
	defer os.Remove(src)

	args := append(append([]string{}, d.args...), outPath, src)
	return runDriver(ctx, d.name, args, outPath)
}

// cargoDriver compiles the source as a standalone wasm32-unknown-unknown
// cdylib by writing it to lib.rs in a temp directory and invoking rustc
// on it directly (no Cargo project is generated), since rustc needs the
// crate root under that file name rather than commandDriver's temp file
// name. Like commandDriver, it collects no exported symbols.
type cargoDriver struct{}

func (cargoDriver) Build(ctx context.Context, source, outPath string) (Manifest, error) {
	dir, err := os.MkdirTemp("", "decorous-cargo-*")
	if err != nil {
		return Manifest{}, decor.IoError("wasmbuild", err)
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, "lib.rs"), []byte(source), 0o644); err != nil {
		return Manifest{}, decor.IoError("wasmbuild", err)
	}

	args := []string{
		"--edition", "2021", "--crate-type", "cdylib",
		"--target", "wasm32-unknown-unknown", "-O",
		filepath.Join(dir, "lib.rs"), "-o", outPath,
	}
	return runDriver(ctx, "rustc", args, outPath)
}

// goWasmDriver builds a Go source block with GOOS=js GOARCH=wasm, the
// toolchain's own first-party Wasm target.
type goWasmDriver struct{}

func (goWasmDriver) Build(ctx context.Context, source, outPath string) (Manifest, error) {
	src, err := writeTempSource(source, "main.go")
	if err != nil {
		return Manifest{}, decor.IoError("wasmbuild", err)
	}
	defer os.Remove(src)

	cmd := exec.CommandContext(ctx, "go", "build", "-o", outPath, src)
	cmd.Env = append(os.Environ(), "GOOS=js", "GOARCH=wasm")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Manifest{}, exitError("go", err, stderr.String())
	}
	wasm, err := os.ReadFile(outPath)
	if err != nil {
		return Manifest{}, decor.IoError("wasmbuild", err)
	}
	return Manifest{Wasm: wasm}, nil
}

func writeTempSource(source, hint string) (string, error) {
	f, err := os.CreateTemp("", "decorous-*-"+filepath.Base(hint))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(source); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// runDriver invokes name with args, reading the produced .wasm file from
// outPath on success. Exported symbols are left empty for toolchains
// that have no symbol-introspection step wired in yet; WasmOpt and the
// planner only ever need the byte stream.
func runDriver(ctx context.Context, name string, args []string, outPath string) (Manifest, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Manifest{}, exitError(name, err, stderr.String())
	}
	wasm, err := os.ReadFile(outPath)
	if err != nil {
		return Manifest{}, decor.IoError("wasmbuild", err)
	}
	return Manifest{Wasm: wasm}, nil
}

// exitError turns an *exec.ExitError into ExternalBuildFailed, using
// golang.org/x/sys/unix to distinguish a signal-killed child from a
// plain non-zero exit (spec §4.5: "failures surface the driver's stderr
// verbatim").
func exitError(lang string, err error, stderr string) error {
	var detail string
	if exitErr, ok := err.(*exec.ExitError); ok {
		if ws, ok := exitErr.Sys().(unix.WaitStatus); ok && ws.Signaled() {
			detail = fmt.Sprintf("killed by signal %s", ws.Signal())
		} else {
			detail = "exit status " + strconv.Itoa(exitErr.ExitCode())
		}
	} else {
		detail = err.Error()
	}
	msg := detail
	if stderr != "" {
		msg = detail + "\n" + stderr
	}
	return decor.ExternalBuildFailed(lang, msg)
}
