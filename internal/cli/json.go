package cli

import (
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/rileyhilliard/nevconsole/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	Cause      string `json:"cause,omitempty"`
}

// ErrCodeUnknown is used for errors that carry no code.
const ErrCodeUnknown = "UNKNOWN"

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteJSONFromError converts a Go error to a JSON error response. data is
// included when the command got partway, e.g. a rejected command's result.
func WriteJSONFromError(w io.Writer, err error, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: false, Data: data, Error: ErrorToJSON(err)})
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError. Structured errors keep
// their code (CONFIG, TRANSPORT, PARSE, NEGOTIATION, COMMAND).
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	if e, ok := err.(*errors.Error); ok {
		je := &JSONError{
			Code:       e.Code,
			Message:    e.Message,
			Suggestion: e.Suggestion,
		}
		if e.Cause != nil {
			je.Cause = errors.Summary(e.Cause)
		}
		return je
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}
