package template

import (
	"errors"
	"fmt"

	oerrors "github.com/polyseam/cndi/internal/errors"
	"github.com/polyseam/cndi/internal/template/resolve"
)

// Code is a stable numeric template error code.
type Code int

// Input shape.
const (
	CodeMultiDocument      Code = 1100
	CodeNotMapping         Code = 1101
	CodeMissingOutputs     Code = 1102
	CodePromptsNotSequence Code = 1103
	CodeBlocksNotSequence  Code = 1104
	CodeInvalidBlock       Code = 1105
	CodeInvalidPrompt      Code = 1106
	CodeInvalidCondition   Code = 1107
)

// Resolution.
const (
	CodeInvalidPath    Code = 1200
	CodeFetchFailed    Code = 1201
	CodeBadStatus      Code = 1202
	CodeParseFailed    Code = 1203
	CodeBlockNotFound  Code = 1204
	CodeReadFailed     Code = 1205
	CodeStringNotFound Code = 1206
)

// Prompting.
const (
	CodeImportNotSequence Code = 1300
	CodeUnknownValidator  Code = 1301
	CodeUnknownComparator Code = 1302
	CodePromptFailed      Code = 1303
	CodeAttemptsExceeded  Code = 1304
	CodeImportDepth       Code = 1305
)

// Output stages.
const (
	CodeExpansionLimit     Code = 1400
	CodeInvalidSplice      Code = 1401
	CodeReadmeBlock        Code = 1500
	CodeEnvBlockNotFlat    Code = 1600
	CodeEnvNotMapping      Code = 1601
	CodeExtraFileKey       Code = 1700
	CodeUnsafePath         Code = 1701
	CodeExtraFileCollision Code = 1702
	CodeEncodeFailed       Code = 1800
)

var codeNames = map[Code]string{
	CodeMultiDocument:      "MultiDocument",
	CodeNotMapping:         "NotMapping",
	CodeMissingOutputs:     "MissingOutputs",
	CodePromptsNotSequence: "PromptsNotSequence",
	CodeBlocksNotSequence:  "BlocksNotSequence",
	CodeInvalidBlock:       "InvalidBlock",
	CodeInvalidPrompt:      "InvalidPrompt",
	CodeInvalidCondition:   "InvalidCondition",
	CodeInvalidPath:        "InvalidPath",
	CodeFetchFailed:        "FetchFailed",
	CodeBadStatus:          "BadStatus",
	CodeParseFailed:        "ParseFailed",
	CodeBlockNotFound:      "BlockNotFound",
	CodeReadFailed:         "ReadFailed",
	CodeStringNotFound:     "StringNotFound",
	CodeImportNotSequence:  "ImportNotSequence",
	CodeUnknownValidator:   "UnknownValidator",
	CodeUnknownComparator:  "UnknownComparator",
	CodePromptFailed:       "PromptFailed",
	CodeAttemptsExceeded:   "AttemptsExceeded",
	CodeImportDepth:        "ImportDepth",
	CodeExpansionLimit:     "ExpansionLimit",
	CodeInvalidSplice:      "InvalidSplice",
	CodeReadmeBlock:        "ReadmeBlock",
	CodeEnvBlockNotFlat:    "EnvBlockNotFlat",
	CodeEnvNotMapping:      "EnvNotMapping",
	CodeExtraFileKey:       "ExtraFileKey",
	CodeUnsafePath:         "UnsafePath",
	CodeExtraFileCollision: "ExtraFileCollision",
	CodeEncodeFailed:       "EncodeFailed",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// sentinel returns the CLI error category of a code, or nil when the
// category comes from the wrapped error.
func (c Code) sentinel() error {
	switch c {
	case CodeInvalidPath, CodeBlockNotFound, CodeReadFailed, CodeStringNotFound:
		return oerrors.ErrNotFound
	case CodeFetchFailed, CodeBadStatus:
		return oerrors.ErrConnectivity
	case CodePromptFailed, CodeEncodeFailed:
		return nil
	default:
		return oerrors.ErrValidation
	}
}

// Error is returned by every fallible template operation.
type Error struct {
	// Code identifies the failure.
	Code Code

	// ID names what failed: a template or block identifier, a prompt name
	// or an output key.
	ID string

	// Message is the human readable description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("template error %d %s", int(e.Code), e.Code)
	if e.ID != "" {
		msg += fmt.Sprintf(" [%s]", e.ID)
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the category sentinel and the underlying error.
func (e *Error) Unwrap() []error {
	var errs []error
	if s := e.Code.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(code Code, id, format string, args ...any) *Error {
	return &Error{Code: code, ID: id, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code Code, id string, err error, format string, args ...any) *Error {
	return &Error{Code: code, ID: id, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the template error code carried by err, or 0.
func CodeOf(err error) Code {
	var terr *Error
	if errors.As(err, &terr) {
		return terr.Code
	}
	return 0
}

// resolutionError maps a resolver failure onto a template error code.
func resolutionError(id string, kind resolve.Kind, err error) *Error {
	var terr *Error
	if errors.As(err, &terr) {
		return terr
	}

	switch {
	case errors.Is(err, resolve.ErrBadStatus):
		return wrapError(CodeBadStatus, id, err, "fetching %s", kind)
	case errors.Is(err, resolve.ErrFetch):
		return wrapError(CodeFetchFailed, id, err, "fetching %s", kind)
	case errors.Is(err, resolve.ErrRead):
		return wrapError(CodeReadFailed, id, err, "reading %s", kind)
	case errors.Is(err, resolve.ErrBareName) && kind == resolve.KindString:
		return wrapError(CodeStringNotFound, id, err, "strings must be referenced by URL or path")
	case errors.Is(err, resolve.ErrBareName):
		return wrapError(CodeBlockNotFound, id, err, "no block named %q", id)
	default:
		return wrapError(CodeInvalidPath, id, err, "resolving %s", kind)
	}
}
