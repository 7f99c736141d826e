package op

// Status classifies the result of running an operation.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the result of running an operation. A failure is an ordinary
// negative result that combinators may act on; an error carries the cause.
type Outcome struct {
	Status Status
	err    error
}

// Succeeded returns a successful outcome.
func Succeeded() Outcome { return Outcome{Status: StatusSuccess} }

// Failed returns a failed outcome.
func Failed() Outcome { return Outcome{Status: StatusFailure} }

// Errored returns an error outcome carrying err.
func Errored(err error) Outcome {
	if err == nil {
		err = ErrThrown
	}

	return Outcome{Status: StatusError, err: err}
}

// Result returns Succeeded if ok, else Failed.
func Result(ok bool) Outcome {
	if ok {
		return Succeeded()
	}

	return Failed()
}

// OK reports whether o is a success.
func (o Outcome) OK() bool { return o.Status == StatusSuccess }

// IsError reports whether o carries an error.
func (o Outcome) IsError() bool { return o.Status == StatusError }

// Err returns the error carried by o, or nil.
func (o Outcome) Err() error { return o.err }

func (o Outcome) String() string {
	if o.err != nil {
		return o.Status.String() + ": " + o.err.Error()
	}

	return o.Status.String()
}
