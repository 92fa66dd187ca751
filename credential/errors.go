package credential

// Error is a type that allows for error constants below.
type Error string

// Error returns a string representation of the error.
func (e Error) Error() string { return string(e) }

const (
	// ErrNoSuitableCredential is returned when every step of the chain failed.
	ErrNoSuitableCredential = Error("no suitable credential found")

	// errSkipped marks a step that was not attempted at all.
	errSkipped = Error("step skipped")
)
