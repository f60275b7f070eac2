package ipstack

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAccessKeyIsRequired  = errors.New("access key is required")
	ErrCircuitBreakerOpened = errors.New("circuit breaker is opened")
	ErrCircuitBreakerIgnore = errors.New("response is ignored by circuit breaker")
)

// MethodNotAllowedError is returned if non-forced request uses a method
// which is not in AllowedMethods. No network call is made in that case.
type MethodNotAllowedError struct {
	Method  string
	Allowed []string
}

func (m *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("method %s is not allowed, allowed methods: %s",
		m.Method, strings.Join(m.Allowed, ","))
}

// TransportError is returned when a retried request still has not got
// a 2xx response. StatusCode and Text belong to the retried response,
// the first one is dropped.
type TransportError struct {
	URL        string
	StatusCode int
	Text       string
	err        error
}

func (t *TransportError) Error() string {
	msg := "unable connect to server"

	switch {
	case t.err != nil:
		return msg + ": " + t.err.Error()
	case t.StatusCode != 0:
		return fmt.Sprintf("%s: status code %d", msg, t.StatusCode)
	}

	return msg
}

func (t *TransportError) Unwrap() error {
	return t.err
}

// APIError is returned if ipstack has responded with unsuccessful
// envelope or with something which is not JSON. Code and Message are
// taken from error.code and error.info of the envelope if possible,
// otherwise these are HTTP status code and raw response text.
type APIError struct {
	Code    int
	Message string
}

func (a *APIError) Error() string {
	return fmt.Sprintf("response: [%d] | %s", a.Code, a.Message)
}

// DecodeError means that response body is not a valid JSON.
type DecodeError struct {
	Body []byte
	err  error
}

func (d *DecodeError) Error() string {
	return "cannot decode json: " + d.err.Error()
}

func (d *DecodeError) Unwrap() error {
	return d.err
}

// ValidationError means that JSON is valid but does not match a schema
// of the record: a required field is absent or has incorrect type.
type ValidationError struct {
	Record string
	Field  string
	err    error
}

func (v *ValidationError) Error() string {
	var b strings.Builder

	b.WriteString("invalid ")
	b.WriteString(v.Record)

	if v.Field != "" {
		b.WriteString(".")
		b.WriteString(v.Field)
	}

	if v.err != nil {
		b.WriteString(": ")
		b.WriteString(v.err.Error())
	}

	return b.String()
}

func (v *ValidationError) Unwrap() error {
	return v.err
}

// TargetError is returned if lookup target cannot be turned into an
// endpoint.
type TargetError struct {
	Target string
	Reason string
}

func (t *TargetError) Error() string {
	if t.Target == "" {
		return "incorrect target: " + t.Reason
	}

	return fmt.Sprintf("incorrect target %q: %s", t.Target, t.Reason)
}
