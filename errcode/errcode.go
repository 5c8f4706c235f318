package errcode

// Code is a stable, caller-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	InvalidParams Code = "invalid_params"
	Unsupported   Code = "unsupported"

	// Non-blocking peripherals: not ready yet, call again.
	WouldBlock Code = "would_block"

	// SPI status faults. The driver reports them and leaves the flags set.
	Overrun   Code = "overrun"
	ModeFault Code = "mode_fault"
	CRC       Code = "crc"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is match a wrapped *E against its bare Code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Wrap attaches an operation name to err, keeping its Code. nil stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: Of(err), Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// Retryable reports whether err only means "not ready yet".
func Retryable(err error) bool { return Of(err) == WouldBlock }
