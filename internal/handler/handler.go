// Package handler implements the diagnostics collector every compiler
// stage reports through (spec §7: "parser and analyzer collect multiple
// errors per phase and report them all"). It is kept from the teacher's
// internal/handler, with the wasm/JS-bridge error conversion dropped —
// Decorous has no browser runtime to report into, so diagnostics only
// ever need to become DiagnosticMessage values for the CLI to render.
package handler

import (
	"errors"

	"github.com/dzfrias/decorous/internal/loc"
)

// Handler accumulates diagnostics for a single component compile. Each
// pipeline stage runs sequentially (spec §5), so it is not built for
// concurrent append.
type Handler struct {
	sourcetext string
	filename   string
	lines      *loc.LineIndex
	errors     []error
	warnings   []error
	infos      []error
	hints      []error
}

// New creates a Handler for a single source file. filename is used only
// for diagnostic rendering.
func New(sourcetext string, filename string) *Handler {
	return &Handler{
		sourcetext: sourcetext,
		filename:   filename,
		lines:      loc.NewLineIndex(sourcetext),
		errors:     make([]error, 0),
		warnings:   make([]error, 0),
		infos:      make([]error, 0),
		hints:      make([]error, 0),
	}
}

func (h *Handler) HasErrors() bool {
	return len(h.errors) > 0
}

func (h *Handler) AppendError(err error) {
	if err != nil {
		h.errors = append(h.errors, err)
	}
}

func (h *Handler) AppendWarning(err error) {
	if err != nil {
		h.warnings = append(h.warnings, err)
	}
}

func (h *Handler) AppendInfo(err error) {
	if err != nil {
		h.infos = append(h.infos, err)
	}
}

func (h *Handler) AppendHint(err error) {
	if err != nil {
		h.hints = append(h.hints, err)
	}
}

func (h *Handler) Errors() []loc.DiagnosticMessage {
	return toMessages(h, loc.ErrorType, h.errors)
}

func (h *Handler) Warnings() []loc.DiagnosticMessage {
	return toMessages(h, loc.WarningType, h.warnings)
}

// Diagnostics returns every collected error, warning, info and hint, in
// that order, fully resolved to source positions.
func (h *Handler) Diagnostics() []loc.DiagnosticMessage {
	msgs := make([]loc.DiagnosticMessage, 0, len(h.errors)+len(h.warnings)+len(h.infos)+len(h.hints))
	msgs = append(msgs, toMessages(h, loc.ErrorType, h.errors)...)
	msgs = append(msgs, toMessages(h, loc.WarningType, h.warnings)...)
	msgs = append(msgs, toMessages(h, loc.InformationType, h.infos)...)
	msgs = append(msgs, toMessages(h, loc.HintType, h.hints)...)
	return msgs
}

func toMessages(h *Handler, severity loc.DiagnosticSeverity, errs []error) []loc.DiagnosticMessage {
	msgs := make([]loc.DiagnosticMessage, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			msgs = append(msgs, errorToMessage(h, severity, err))
		}
	}
	return msgs
}

func errorToMessage(h *Handler, severity loc.DiagnosticSeverity, err error) loc.DiagnosticMessage {
	var rangedError *loc.ErrorWithRange
	switch {
	case errors.As(err, &rangedError):
		line, col := h.lines.Position(rangedError.Range.Loc.Start)
		location := &loc.DiagnosticLocation{
			File:   h.filename,
			Line:   line,
			Column: col,
			Length: rangedError.Range.Len,
		}
		message := rangedError.ToMessage(location)
		message.Severity = int(severity)
		return message
	default:
		return loc.DiagnosticMessage{Text: err.Error(), Severity: int(severity)}
	}
}
