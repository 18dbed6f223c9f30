package cerr

import (
	"errors"
	"fmt"
	"runtime"

	"buf.build/gen/go/bufbuild/protovalidate/protocolbuffers/go/buf/validate"
	"google.golang.org/protobuf/proto"

	"github.com/agentrep/trustledger/pkg/clog"
)

type Error struct {
	Code    Code
	Msg     string          // returned to the caller together with Code
	Err     error           // kept for logs only
	Stack   string          // captured for error-level codes
	Details []proto.Message // returned to the caller
}

func NewError(code Code, msg string, underlying error) *Error {
	err := &Error{
		Code: code,
		Msg:  msg,
		Err:  underlying,
	}
	if clog.ConnectCodeToLevel(code.ConnectCode()) == clog.LevelError {
		stackTrace := make([]byte, 2048)
		n := runtime.Stack(stackTrace, false)
		err.Stack = string(stackTrace[0:n])
	}
	return err
}

func NewErrorWithDetails(code Code, msg string, underlying error, details []proto.Message) *Error {
	err := NewError(code, msg, underlying)
	err.Details = details
	return err
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code.String(), e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Msg, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AddViolation attaches a field-level violation, e.g. a name that exceeds
// its byte capacity.
func (e *Error) AddViolation(field, ruleID, msg string) *Error {
	e.Details = append(e.Details, &validate.Violation{
		Field:   fieldPath(field),
		RuleId:  &ruleID,
		Message: &msg,
	})
	return e
}

func fieldPath(name string) *validate.FieldPath {
	if name == "" {
		return nil
	}
	return &validate.FieldPath{
		Elements: []*validate.FieldPathElement{{FieldName: &name}},
	}
}

// Violations returns the violation details attached to err, if any.
func Violations(err error) []*validate.Violation {
	var cErr *Error
	if !errors.As(err, &cErr) {
		return nil
	}
	var out []*validate.Violation
	for _, d := range cErr.Details {
		if v, ok := d.(*validate.Violation); ok {
			out = append(out, v)
		}
	}
	return out
}

func IsCode(err error, code Code) bool {
	var cErr *Error
	if errors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}

// CodeOf returns the Code carried by err, or Unknown.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var cErr *Error
	if errors.As(err, &cErr) {
		return cErr.Code
	}
	return Unknown
}
