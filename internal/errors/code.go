package apperrors

import (
	"fmt"
	"strconv"
	"strings"
)

// Code is a 32-bit HRESULT-style status reported by the assessment service.
// The high bit marks a failure; zero is success.
type Code uint32

// Well-known status codes.
const (
	SOK               Code = 0x00000000
	EFail             Code = 0x80004005
	ENoInterface      Code = 0x80004002
	EAccessDenied     Code = 0x80070005
	EFileNotFound     Code = 0x80070002
	EOutOfMemory      Code = 0x8007000e
	EUnexpected       Code = 0x8000ffff
	EAbort            Code = 0x80004004
	ETimeout          Code = 0x800705b4
	EInvalidArgument  Code = 0x80070057
	EServiceDisabled  Code = 0x80070422
	ENotImplemented   Code = 0x80004001
	EClassNotFound    Code = 0x80040154
	EServerExecFailed Code = 0x80080005
)

var codeNames = map[Code]string{
	SOK:               "S_OK",
	EFail:             "E_FAIL",
	ENoInterface:      "E_NOINTERFACE",
	EAccessDenied:     "E_ACCESSDENIED",
	EFileNotFound:     "ERROR_FILE_NOT_FOUND",
	EOutOfMemory:      "E_OUTOFMEMORY",
	EUnexpected:       "E_UNEXPECTED",
	EAbort:            "E_ABORT",
	ETimeout:          "ERROR_TIMEOUT",
	EInvalidArgument:  "E_INVALIDARG",
	EServiceDisabled:  "ERROR_SERVICE_DISABLED",
	ENotImplemented:   "E_NOTIMPL",
	EClassNotFound:    "REGDB_E_CLASSNOTREG",
	EServerExecFailed: "CO_E_SERVER_EXEC_FAILURE",
}

// Failed reports whether the code has the severity bit set.
func (c Code) Failed() bool { return c&0x80000000 != 0 }

// Name returns the symbolic name of a well-known code, or "" when unknown.
func (c Code) Name() string { return codeNames[c] }

// String renders the code as 0x%08x.
func (c Code) String() string {
	return fmt.Sprintf("0x%08x", uint32(c))
}

// ParseCode parses a status code written in hex (with or without 0x), in
// decimal, or as one of the symbolic names known to this package.
func ParseCode(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty status code")
	}
	for code, name := range codeNames {
		if strings.EqualFold(name, s) {
			return code, nil
		}
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") {
		v, err := strconv.ParseUint(lower[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid status code %q: %w", s, err)
		}
		return Code(v), nil
	}
	v, err := strconv.ParseUint(lower, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid status code %q: %w", s, err)
	}
	return Code(v), nil
}
