package wasmbuild

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"

	"golang.org/x/sync/errgroup"

	decor "github.com/dzfrias/decorous/internal"
	"github.com/dzfrias/decorous/internal/fence"
	"github.com/dzfrias/decorous/internal/handler"
)

// Options configures a Build: the wasm-opt level (spec §6 "-O{0..4};
// 0 disables") and whether a strip pass runs afterward.
type Options struct {
	OptLevel int
	Strip    bool
}

// Build runs the foreign-language block's driver, then optionally pipes
// the result through wasm-opt and a strip pass, reporting any failure on
// h (spec §4.5/§7: ExternalBuildFailed / WasmOptFailed carry the child's
// stderr verbatim).
func Build(ctx context.Context, blk fence.Block, opts Options, h *handler.Handler) (Manifest, bool) {
	driver, ok := driverFor(blk.Lang)
	if !ok {
		h.AppendError(decor.ExternalBuildFailed(string(blk.Lang), "no build driver registered for this language"))
		return Manifest{}, false
	}

	outFile, err := os.CreateTemp("", "decorous-*.wasm")
	if err != nil {
		h.AppendError(decor.IoError("wasmbuild", err))
		return Manifest{}, false
	}
	outPath := outFile.Name()
	outFile.Close()
	defer os.Remove(outPath)

	manifest, err := driver.Build(ctx, blk.Body, outPath)
	if err != nil {
		h.AppendError(err)
		return Manifest{}, false
	}

	if opts.OptLevel > 0 {
		optimized, err := runWasmOpt(ctx, manifest.Wasm, opts.OptLevel)
		if err != nil {
			h.AppendError(err)
			return Manifest{}, false
		}
		manifest.Wasm = optimized
	}

	if opts.Strip {
		stripped, err := runWasmStrip(ctx, manifest.Wasm)
		if err != nil {
			h.AppendError(err)
			return Manifest{}, false
		}
		manifest.Wasm = stripped
	}

	return manifest, true
}

// BuildAndScope runs the Wasm build concurrently with independent pure
// transforms of the same component (CSS scoping, HTML rendering) via
// errgroup.Group, since none of them read each other's output (spec §5
// "concurrency model": independent pure transforms of the same
// *Component parallelize; no stage otherwise suspends). Each side effect
// is expressed as a thunk so callers can parallelize with whatever else
// a component build needs without wasmbuild knowing about printer/cssscope.
func BuildAndScope(ctx context.Context, blk fence.Block, opts Options, h *handler.Handler, others ...func() error) (Manifest, bool) {
	var manifest Manifest
	var ok bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		manifest, ok = Build(gctx, blk, opts, h)
		return nil
	})
	for _, fn := range others {
		fn := fn
		g.Go(fn)
	}
	_ = g.Wait()
	return manifest, ok
}

func runWasmOpt(ctx context.Context, wasm []byte, level int) ([]byte, error) {
	in, err := os.CreateTemp("", "decorous-opt-in-*.wasm")
	if err != nil {
		return nil, decor.IoError("wasmbuild", err)
	}
	defer os.Remove(in.Name())
	if _, err := in.Write(wasm); err != nil {
		return nil, decor.IoError("wasmbuild", err)
	}
	in.Close()

	out, err := os.CreateTemp("", "decorous-opt-out-*.wasm")
	if err != nil {
		return nil, decor.IoError("wasmbuild", err)
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	cmd := exec.CommandContext(ctx, "wasm-opt", "-O"+strconv.Itoa(level), in.Name(), "-o", outPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, decor.WasmOptFailed(stderr.String())
	}

	optimized, err := os.ReadFile(outPath)
	if err != nil {
		return nil, decor.IoError("wasmbuild", err)
	}
	return optimized, nil
}

func runWasmStrip(ctx context.Context, wasm []byte) ([]byte, error) {
	in, err := os.CreateTemp("", "decorous-strip-*.wasm")
	if err != nil {
		return nil, decor.IoError("wasmbuild", err)
	}
	inPath := in.Name()
	defer os.Remove(inPath)
	if _, err := in.Write(wasm); err != nil {
		return nil, decor.IoError("wasmbuild", err)
	}
	in.Close()

	cmd := exec.CommandContext(ctx, "wasm-opt", "--strip-debug", "--strip-producers", inPath, "-o", inPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, decor.WasmOptFailed(stderr.String())
	}

	stripped, err := os.ReadFile(inPath)
	if err != nil {
		return nil, decor.IoError("wasmbuild", err)
	}
	return stripped, nil
}
