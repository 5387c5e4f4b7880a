package dispatch

import (
	"strings"

	"github.com/tidwall/sjson"

	"github.com/preston-bernstein/f1-data-service/internal/document"
)

// NotFoundFormat selects how an unmatched team or driver is reported.
type NotFoundFormat string

const (
	// NotFoundLegacy prints the bare literal 404, which existing callers parse.
	NotFoundLegacy NotFoundFormat = "legacy"
	// NotFoundJSON prints {"error": "..."} like every other failure.
	NotFoundJSON NotFoundFormat = "json"
)

const legacyNotFoundBody = "404\n"

// ParseNotFoundFormat reads a format name, defaulting to NotFoundLegacy.
func ParseNotFoundFormat(raw string) NotFoundFormat {
	if strings.EqualFold(strings.TrimSpace(raw), string(NotFoundJSON)) {
		return NotFoundJSON
	}
	return NotFoundLegacy
}

// Result is the outcome of one invocation: what to print and how to exit.
type Result struct {
	Operation Operation
	ExitCode  int
	Body      []byte
	Err       *Error
}

// OK reports whether the invocation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

func messageBody(text string) []byte {
	return render("message", text)
}

func errorBody(text string) []byte {
	return render("error", text)
}

func render(key, text string) []byte {
	out, err := sjson.SetBytes([]byte(`{}`), key, text)
	if err != nil {
		out = []byte(`{}`)
	}
	return document.Pretty(out)
}

func (f NotFoundFormat) body(msg string) []byte {
	if f == NotFoundJSON {
		return errorBody(msg)
	}
	return []byte(legacyNotFoundBody)
}

// Failure builds the result for a problem found before dispatch, such as a
// bad command line or unreadable configuration.
func Failure(kind Kind, msg string) Result {
	return Result{ExitCode: 1, Body: errorBody(msg), Err: &Error{Kind: kind, Message: msg}}
}
