package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dzfrias/decorous/internal/compile"
	"github.com/dzfrias/decorous/internal/printer"
)

var (
	renderMethod string
	optLevel     int
	strip        bool
	modularize   bool
	outDir       string
)

var buildCmd = &cobra.Command{
	Use:   "build FILE",
	Short: "Compile a .decor file to its output artifacts",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	addCompileFlags(buildCmd)
}

func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&renderMethod, "render-method", "r", "dom", "Render method: dom, csr, prerender")
	cmd.Flags().IntVarP(&optLevel, "opt-level", "O", 0, "Wasm optimization level (0-4; 0 disables)")
	cmd.Flags().BoolVar(&strip, "strip", false, "Strip Wasm debug info after build")
	cmd.Flags().BoolVar(&modularize, "modularize", false, "Emit an ES module exporting initialize(element) instead of an auto-run script")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory for compiled artifacts")
}

func compileOptionsFromFlags() (compile.Options, error) {
	method := printer.RenderMethod(renderMethod)
	switch method {
	case printer.RenderDOM, printer.RenderCSR, printer.RenderPrerender:
	default:
		return compile.Options{}, fmt.Errorf("unknown render method %q", renderMethod)
	}
	if optLevel < 0 || optLevel > 4 {
		return compile.Options{}, fmt.Errorf("opt-level must be 0-4, got %d", optLevel)
	}
	return compile.Options{
		Method:     method,
		Modularize: modularize,
		OptLevel:   optLevel,
		Strip:      strip,
	}, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	path := args[0]
	opts, err := compileOptionsFromFlags()
	if err != nil {
		return &cliError{code: 1, err: err}
	}
	return buildOnce(cmd.Context(), path, opts)
}

// buildOnce compiles path once and writes whichever artifacts
// compile.Result carries to outDir, reused by both `build` and each
// rebuild `watch` triggers.
func buildOnce(ctx context.Context, path string, opts compile.Options) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return &cliError{code: 3, err: err}
	}

	res, h := compile.Compile(ctx, string(source), path, opts)
	printDiagnostics(logger, h)
	if res == nil {
		return &cliError{code: exitCodeForDiagnostics(h.Diagnostics()), err: fmt.Errorf("compile failed")}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return &cliError{code: 3, err: err}
	}

	jsExt := ".js"
	if opts.Modularize {
		jsExt = ".mjs"
	}
	writes := map[string][]byte{
		jsExt:   res.JS,
		".css":  res.CSS,
		".json": res.JSON,
	}
	if res.HTML != nil {
		writes[".html"] = res.HTML
	}
	for ext, content := range writes {
		if len(content) == 0 {
			continue
		}
		dest := filepath.Join(outDir, stem+ext)
		if err := atomicWriteFile(dest, content, 0o644); err != nil {
			return &cliError{code: 3, err: err}
		}
		logger.Sugar().Infof("wrote %s", dest)
	}
	return nil
}

// atomicWriteFile writes content to a temp file beside dest and renames it
// into place only once the write succeeds, so a failure partway through
// buildOnce's writes loop (disk full, permission error) never leaves a
// half-written artifact at dest. Each artifact is replaced on its own: an
// artifact renamed into place before the failure stays, and the ones not
// yet written keep their previous content.
func atomicWriteFile(dest string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	return os.Rename(tmpPath, dest)
}
