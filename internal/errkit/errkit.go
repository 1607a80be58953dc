// Package errkit provides wrapped errors that carry a message, structured
// fields, and a call-site stack frame, while still supporting errors.Is/As
// against both the wrapped error and any sentinels it was declared
// equivalent to.
package errkit

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
)

type Fields = map[string]any

var (
	_ error          = (*Error)(nil)
	_ json.Marshaler = (*Error)(nil)
)

type Error struct {
	error
	msg    string
	fields Fields
	frame  frame
	prev   *multiError
}

type frame struct {
	fn   string
	file string
	line int
}

func (e *Error) Error() string {
	switch {
	case e.msg != "" && len(e.fields) > 0:
		return fmt.Sprintf("%s: %s (%+v)", e.msg, e.error.Error(), mapToString(e.fields))
	case e.msg == "" && len(e.fields) > 0:
		return fmt.Sprintf("%s (%+v)", e.error.Error(), mapToString(e.fields))
	case e.msg != "" && len(e.fields) == 0:
		return fmt.Sprintf("%s: %s", e.msg, e.error.Error())
	default:
		return e.error.Error()
	}
}

func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if target == error(e) {
		return true
	}
	if e.prev != nil && e.prev.Is(target) {
		return true
	}
	return errors.Is(e.error, target)
}

func (e *Error) As(target any) bool {
	if target == nil {
		return false
	}
	if e.prev != nil && e.prev.As(target) {
		return true
	}
	return errors.As(e.error, target)
}

func (e *Error) MarshalJSON() ([]byte, error) {
	type jsonError struct {
		Msg        string          `json:"msg,omitempty"`
		Func       string          `json:"func,omitempty"`
		FilePos    string          `json:"filepos,omitempty"`
		Fields     Fields          `json:"fields,omitempty"`
		Error      json.RawMessage `json:"error,omitempty"`
		ErrorExtra any             `json:"error_extra,omitempty"`
	}

	jerr := jsonError{
		Msg:    e.msg,
		Fields: e.fields,
	}
	if e.frame.fn != "" {
		jerr.Func = e.frame.fn
		jerr.FilePos = fmt.Sprintf("%s:%d", e.frame.file, e.frame.line)
	}

	if e.error == nil {
		return json.Marshal(jerr)
	}

	jerr.Error = ForceMarshalError(e.error)

	switch (e.error).(type) {
	case json.Marshaler, encoding.TextMarshaler:
		// the inner error marshals itself; don't also dig into it
	default:
		jerr.ErrorExtra = errors.Unwrap(e.error)
	}

	return json.Marshal(jerr)
}

// WithFields returns a copy of e with the given key/value pairs merged in.
// Keys may be passed as alternating string/any arguments or as a single
// Fields map.
func (e *Error) WithFields(fields ...any) *Error {
	tmp := *e
	if len(fields) == 0 {
		return &tmp
	}
	tmp.fields = mergeFields(e.fields, ToFields(fields))
	tmp.prev = tmp.prev.append(e)
	return &tmp
}

func (e *Error) WithField(key string, value any) *Error {
	return e.WithFields(key, value)
}

func (e *Error) WithEquivalents(errs ...error) *Error {
	tmp := *e
	tmp.error = WithEquivalents(e.error, errs...)
	tmp.prev = tmp.prev.append(e)
	return &tmp
}

func (e *Error) Unwrap() error {
	return e.error
}

func mergeFields(base, add Fields) Fields {
	out := make(Fields, len(base)+len(add))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range add {
		out[k] = v
	}
	return out
}

// multiError lets Is/As walk a chain of *Error values that were produced by
// WithFields/WithField/WithEquivalents, so that wrapping loses no
// comparability against earlier sentinels in the chain.
type multiError struct {
	errs []error
}

func (m *multiError) append(err error) *multiError {
	if m == nil {
		m = &multiError{}
	}
	tmp := &multiError{errs: append([]error(nil), m.errs...)}
	tmp.errs = append(tmp.errs, err)
	return tmp
}

func (m *multiError) Is(target error) bool {
	if m == nil {
		return false
	}
	for _, err := range m.errs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (m *multiError) As(target any) bool {
	if m == nil {
		return false
	}
	for _, err := range m.errs {
		if errors.As(err, target) {
			return true
		}
	}
	return false
}

// equivalence lets an error compare equal (via errors.Is) to a set of
// sentinels it doesn't literally wrap, e.g. a driver-specific "row exists"
// error being equivalent to a package-level ErrAlreadyExists.
type equivalence struct {
	error
	equivalents []error
}

func (e *equivalence) Is(target error) bool {
	for _, eq := range e.equivalents {
		if eq == target {
			return true
		}
	}
	return errors.Is(e.error, target)
}

func (e *equivalence) Unwrap() error {
	return e.error
}

// WithEquivalents makes err compare equal, via errors.Is, to each of errs.
func WithEquivalents(err error, errs ...error) error {
	if err == nil {
		return nil
	}
	return &equivalence{error: err, equivalents: errs}
}

// NewEquivalent creates a plain error with message msg that also compares
// equal (via errors.Is) to each non-nil error in errs.
func NewEquivalent(msg string, errs ...error) error {
	newErrs := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			newErrs = append(newErrs, err)
		}
	}
	return WithEquivalents(errors.New(msg), newErrs...)
}

// Wrap attaches a call-site frame, message, and optional fields to err.
func Wrap(err error, msg string, fields ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		error:  err,
		msg:    msg,
		fields: ToFields(fields),
		frame:  callerFrame(2),
	}
}

// WithMessage attaches a message (but no new stack frame) to err.
func WithMessage(err error, msg string, fields ...any) *Error {
	return &Error{
		error:  err,
		msg:    msg,
		fields: ToFields(fields),
	}
}

// WithFields attaches structured fields (but no message) to err.
func WithFields(err error, fields ...any) *Error {
	return &Error{
		error:  err,
		fields: ToFields(fields),
	}
}

func callerFrame(skip int) frame {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return frame{}
	}
	fn := runtime.FuncForPC(pc)
	name := ""
	if fn != nil {
		name = fn.Name()
	}
	return frame{fn: name, file: file, line: line}
}

// ForceMarshalError marshals err to JSON, falling back to its Error()
// string if it has no custom marshaling and isn't itself a simple struct.
func ForceMarshalError(err error) json.RawMessage {
	if err == nil {
		return nil
	}
	if b, jerr := json.Marshal(err); jerr == nil && string(b) != "{}" {
		return b
	}
	b, _ := json.Marshal(err.Error())
	return b
}
