package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/twiced-technology-gmbh/planwatch/internal/clierr"
)

// JSON writes data as indented JSON to the given writer.
func JSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorResponse is the JSON envelope for structured error output.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// JSONError writes err to w as an ErrorResponse. Errors without a code are
// reported as INTERNAL_ERROR.
func JSONError(w io.Writer, err error) {
	e := clierr.As(err)
	resp := ErrorResponse{Error: e.Message, Code: e.Code, Details: e.Details}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp) // best-effort; if writer fails, nothing we can do
}

// BatchResult represents the outcome of a single operation within a batch.
// ID is the reference as the user gave it.
type BatchResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// NewBatchResult records the outcome of one batch operation on ref.
func NewBatchResult(ref string, err error) BatchResult {
	if err == nil {
		return BatchResult{ID: ref, OK: true}
	}
	return BatchResult{ID: ref, Error: err.Error(), Code: clierr.CodeOf(err)}
}
