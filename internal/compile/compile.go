// Package compile wires the compiler's stages (spec §5 "Component
// pipeline") into a single entrypoint: fence splitter, markup parser,
// script analyzer, CSS scoper, Wasm orchestrator, planner and printer.
// It lives outside package decor deliberately — internal/markup,
// internal/script and internal/plan all depend on decor's node/error
// types, and a single orchestration package importing printer, plan,
// script, markup and wasmbuild together would cycle back into decor if
// it were decor itself.
package compile

import (
	"context"

	decor "github.com/dzfrias/decorous/internal"
	"github.com/dzfrias/decorous/internal/fence"
	"github.com/dzfrias/decorous/internal/handler"
	"github.com/dzfrias/decorous/internal/markup"
	"github.com/dzfrias/decorous/internal/plan"
	"github.com/dzfrias/decorous/internal/printer"
	"github.com/dzfrias/decorous/internal/script"
	"github.com/dzfrias/decorous/internal/wasmbuild"
)

// Options configures a single component compile (spec §6 CLI flags).
type Options struct {
	Method     printer.RenderMethod
	Modularize bool
	OptLevel   int
	Strip      bool
}

// Result holds a compiled component's output artifacts (spec §6). HTML
// is nil in csr mode, where there is no separate out.html: the rendered
// markup is embedded directly in JS instead (spec §4.7).
type Result struct {
	HTML []byte
	JS   []byte
	CSS  []byte
	JSON []byte
}

// Check runs the pipeline's analysis stages only — fence splitting,
// script analysis, markup parsing and planning — never invoking a
// foreign-language build driver or a printer (spec §6 "check: parse +
// analyze only ... no codegen"), so `decorous check` is cheap enough for
// CI and never shells out to an external compiler toolchain.
func Check(source, filename string) *handler.Handler {
	h := handler.New(source, filename)

	split := fence.Split(source, h)
	if h.HasErrors() {
		return h
	}

	a := script.Analyze(split.Source(fence.LangJS), h)
	doc := markup.Parse(split.MarkupText, h)
	if h.HasErrors() {
		return h
	}

	plan.Build(doc, a, h)
	return h
}

// Compile runs every stage of spec §5's pipeline over a single .decor
// file's source, in source order, stopping early the moment a stage's
// diagnostics make the next stage's output meaningless (a malformed
// fence makes the rest of the split untrustworthy; a markup/script
// error makes planning it pointless). h always carries every diagnostic
// collected up to the point Compile stopped, so the caller can render
// them regardless of whether res is nil.
func Compile(ctx context.Context, source, filename string, opts Options) (*Result, *handler.Handler) {
	h := handler.New(source, filename)

	split := fence.Split(source, h)
	if h.HasErrors() {
		return nil, h
	}

	scopeToken := decor.ScopeTokenFromSource(source)
	a := script.Analyze(split.Source(fence.LangJS), h)
	doc := markup.Parse(split.MarkupText, h)
	if h.HasErrors() {
		return nil, h
	}

	pl := plan.Build(doc, a, h)
	if h.HasErrors() {
		return nil, h
	}

	var (
		htmlOut []byte
		blocks  []printer.BlockSpec
		cssOut  []byte
		wasm    *wasmbuild.Manifest
	)

	// Rendering markup, scoping CSS and building the foreign-language
	// Wasm block are independent pure transforms of the same parsed
	// component (spec §5 "concurrency model"), so they run concurrently
	// via wasmbuild.BuildAndScope's errgroup rather than sequentially —
	// the Wasm build is normally the slowest stage (an external
	// compiler invocation), and there is no reason the CSS/HTML passes
	// should wait on it.
	if blk, ok := split.Foreign(); ok {
		m, built := wasmbuild.BuildAndScope(ctx, blk,
			wasmbuild.Options{OptLevel: opts.OptLevel, Strip: opts.Strip}, h,
			func() error {
				htmlOut, blocks = printer.PrintHTML(doc, scopeToken, a, pl.ContextIndex)
				return nil
			},
			func() error {
				cssOut = printer.PrintCSS(split.Source(fence.LangCSS), scopeToken)
				return nil
			},
		)
		if built {
			wasm = &m
		}
	} else {
		htmlOut, blocks = printer.PrintHTML(doc, scopeToken, a, pl.ContextIndex)
		cssOut = printer.PrintCSS(split.Source(fence.LangCSS), scopeToken)
	}
	if h.HasErrors() {
		return nil, h
	}

	jsOpts := printer.JSOptions{
		Method:     opts.Method,
		Modularize: opts.Modularize,
		Wasm:       wasm,
	}
	if opts.Method == printer.RenderCSR {
		jsOpts.HTML = string(htmlOut)
	}
	jsOut := printer.PrintJS(a, pl, blocks, jsOpts)

	jsonOut, err := printer.PrintJSON(pl, wasm)
	if err != nil {
		h.AppendError(decor.IoError("build manifest", err))
		return nil, h
	}

	res := &Result{JS: jsOut, CSS: cssOut, JSON: jsonOut}
	if opts.Method != printer.RenderCSR {
		res.HTML = htmlOut
	}
	return res, h
}
