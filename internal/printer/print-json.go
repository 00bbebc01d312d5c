package printer

import (
	"github.com/go-json-experiment/json"

	"github.com/dzfrias/decorous/internal/plan"
	"github.com/dzfrias/decorous/internal/wasmbuild"
)

// BuildManifest is the build-manifest emitter's payload (spec §5.7: "a
// build-manifest emitter (exported symbols, anchor count, reactive-
// binding count) for tooling/debugging"), generalized from the
// teacher's print-to-json.go (which serializes the whole parsed AST for
// IDE tooling); Decorous's Plan is the more useful analog for a
// Wasm-backed reactive component, since it is already the compiler's
// own flat, index-addressed summary of everything downstream tooling
// would want to inspect.
type BuildManifest struct {
	ReactiveBindings int              `json:"reactiveBindings"`
	Anchors          int              `json:"anchors"`
	HandlerCount     int              `json:"handlers"`
	WasmSymbols      []wasmbuild.Symbol `json:"wasmSymbols,omitempty"`
}

// PrintJSON renders a component's build manifest (spec §5.7), using
// go-json-experiment/json's encoding/json-compatible Marshal entrypoint
// (already a direct dependency of the teacher's go.mod, unused by any
// retrieved teacher source file — see DESIGN.md).
func PrintJSON(pl *plan.Plan, wasm *wasmbuild.Manifest) ([]byte, error) {
	m := BuildManifest{
		ReactiveBindings: len(pl.ContextOrder),
		Anchors:          len(pl.Anchors),
		HandlerCount:     len(pl.HandlerWrites),
	}
	if wasm != nil {
		m.WasmSymbols = wasm.Symbols
	}
	return json.Marshal(m)
}
