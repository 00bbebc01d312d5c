package decor

import (
	"fmt"

	"github.com/dzfrias/decorous/internal/loc"
)

// The constructors below build the user-visible error kinds named in
// spec §7, each carrying the source span it applies to. Every compiler
// stage constructs these instead of a bare `fmt.Errorf`, so the handler
// and the CLI can render a consistent "file:line:col: message" line for
// each (plus a diff against the suggested fix, for a diagnostic that
// carries one).

func UnterminatedFence(lang string, at loc.Loc) error {
	return &loc.ErrorWithRange{
		Code:  loc.ERROR_UNTERMINATED_FENCE,
		Text:  fmt.Sprintf("unterminated %q fence: missing closing \"---\"", lang),
		Range: loc.Range{Loc: at, Len: 3},
	}
}

func DuplicateLangBlock(lang string, at loc.Loc) error {
	return &loc.ErrorWithRange{
		Code:       loc.ERROR_DUPLICATE_LANG_BLOCK,
		Text:       fmt.Sprintf("duplicate %q block: a component may have at most one foreign-language block", lang),
		Hint:       "multiple `js` blocks are concatenated in source order; other languages may only appear once",
		Range:      loc.Range{Loc: at, Len: len(lang) + 3},
	}
}

func UnknownFenceLang(lang string, at loc.Loc) error {
	return &loc.ErrorWithRange{
		Code:  loc.ERROR_UNKNOWN_FENCE_LANG,
		Text:  fmt.Sprintf("unknown fence language %q", lang),
		Range: loc.Range{Loc: at, Len: len(lang) + 3},
	}
}

func UnbalancedTag(tag string, at loc.Loc) error {
	return &loc.ErrorWithRange{
		Code:  loc.ERROR_UNBALANCED_TAG,
		Text:  fmt.Sprintf("unbalanced tag %q", tag),
		Range: loc.Range{Loc: at, Len: len(tag) + 1},
	}
}

func UnterminatedBlock(kind string, at loc.Loc) error {
	return &loc.ErrorWithRange{
		Code:  loc.ERROR_UNTERMINATED_BLOCK,
		Text:  fmt.Sprintf("unterminated {#%s} block", kind),
		Range: loc.Range{Loc: at, Len: len(kind) + 2},
	}
}

func MalformedAttribute(raw string, at loc.Loc) error {
	return &loc.ErrorWithRange{
		Code:  loc.ERROR_MALFORMED_ATTRIBUTE,
		Text:  fmt.Sprintf("malformed attribute near %q", raw),
		Range: loc.Range{Loc: at, Len: len(raw)},
	}
}

func EmptyInterpolation(at loc.Loc) error {
	return &loc.ErrorWithRange{
		Code:  loc.ERROR_EMPTY_INTERPOLATION,
		Text:  "empty interpolation: `{}` has no expression",
		Range: loc.Range{Loc: at, Len: 2},
	}
}

func UndefinedReactiveBinding(name string, at loc.Loc) error {
	return &loc.ErrorWithRange{
		Code:  loc.ERROR_UNDEFINED_REACTIVE_BINDING,
		Text:  fmt.Sprintf("%q is not declared in the component's script block", name),
		Range: loc.Range{Loc: at, Len: len(name)},
	}
}

func ReactivityCycle(names []string, at loc.Loc) error {
	return &loc.ErrorWithRange{
		Code:       loc.ERROR_REACTIVITY_CYCLE,
		Text:       fmt.Sprintf("reactivity cycle between %v", names),
		Hint:       "a derived reactive binding may not be written by a handler that also reads it through another reactive binding in the cycle",
		Range:      loc.Range{Loc: at, Len: 1},
	}
}

func UnsupportedAssignment(name string, at loc.Loc) error {
	return &loc.ErrorWithRange{
		Code:  loc.ERROR_UNSUPPORTED_ASSIGNMENT,
		Text:  fmt.Sprintf("destructuring assignment to %q is only tracked at top level", name),
		Range: loc.Range{Loc: at, Len: len(name)},
	}
}

func ShadowedReactive(name string, at loc.Loc) error {
	return &loc.ErrorWithRange{
		Code:  loc.ERROR_SHADOWED_REACTIVE,
		Text:  fmt.Sprintf("inner declaration shadows reactive binding %q and will not propagate", name),
		Range: loc.Range{Loc: at, Len: len(name)},
	}
}

func MutationNotReassignment(name string, method string, at loc.Loc) error {
	return &loc.ErrorWithRange{
		Code:       loc.WARNING_MUTATION_NOT_REASSIGNMENT,
		Text:       fmt.Sprintf("%s.%s(...) mutates in place and will not schedule an update", name, method),
		Suggestion: fmt.Sprintf("reassign %s, e.g. `%s = [...%s, x]`", name, name, name),
		Range:      loc.Range{Loc: at, Len: len(name) + len(method) + 1},
	}
}

func ExternalBuildFailed(lang string, stderr string) error {
	return &loc.ErrorWithRange{
		Code: loc.ERROR_EXTERNAL_BUILD_FAILED,
		Text: fmt.Sprintf("%s build failed:\n%s", lang, stderr),
	}
}

func WasmOptFailed(stderr string) error {
	return &loc.ErrorWithRange{
		Code: loc.ERROR_WASM_OPT_FAILED,
		Text: fmt.Sprintf("wasm-opt failed:\n%s", stderr),
	}
}

func IoError(op string, err error) error {
	return &loc.ErrorWithRange{
		Code: loc.ERROR_IO,
		Text: fmt.Sprintf("%s: %v", op, err),
	}
}
