package main

import (
	"fmt"
	"os"

	"github.com/pkg/diff"
	"go.uber.org/zap"

	"github.com/dzfrias/decorous/internal/handler"
	"github.com/dzfrias/decorous/internal/loc"
)

// cliError carries the exit code spec §6 assigns a failure class, so
// main's os.Exit reflects why a command failed rather than always
// exiting 1.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }

func exitCodeFor(err error) int {
	if ce, ok := err.(*cliError); ok {
		return ce.code
	}
	return 1
}

// exitCodeForDiagnostics classifies the worst diagnostic in msgs into
// spec §6's exit codes: an external-build/wasm-opt failure is a build
// failure (2), an I/O failure is 3, anything else reported as an error
// is a user error (1).
func exitCodeForDiagnostics(msgs []loc.DiagnosticMessage) int {
	worst := 0
	for _, m := range msgs {
		if m.Severity != int(loc.ErrorType) {
			continue
		}
		switch m.Code {
		case loc.ERROR_EXTERNAL_BUILD_FAILED, loc.ERROR_WASM_OPT_FAILED:
			if worst < 2 {
				worst = 2
			}
		case loc.ERROR_IO:
			if worst < 3 {
				worst = 3
			}
		default:
			if worst < 1 {
				worst = 1
			}
		}
	}
	return worst
}

// printDiagnostics renders every collected diagnostic to stderr, one
// "file:line:col: message" line each, plus a unified diff of the message
// text against the suggested fix for any diagnostic that carries a
// Suggestion (today only the mutation-instead-of-reassignment warning
// does), via github.com/pkg/diff — a teacher go.mod dependency that the
// retrieved teacher snapshot never calls from any sampled file.
func printDiagnostics(log *zap.Logger, h *handler.Handler) {
	msgs := h.Diagnostics()
	for _, m := range msgs {
		prefix := ""
		if m.Location != nil {
			prefix = fmt.Sprintf("%s:%d:%d: ", m.Location.File, m.Location.Line, m.Location.Column)
		}
		fmt.Fprintf(os.Stderr, "%s%s\n", prefix, m.Text)
		if m.Suggestion != "" {
			printSuggestionDiff(m.Text, m.Suggestion)
		}
	}
	if len(msgs) > 0 {
		log.Sugar().Debugf("%d diagnostic(s) reported", len(msgs))
	}
}

func printSuggestionDiff(got, want string) {
	_ = diff.Text("got", "want", got, want, os.Stderr)
}
