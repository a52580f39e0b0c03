package addressbook

import "errors"

// Error categories for the addressbook package.
//
// Every validation failure unwraps to ErrValidation and every missing-book
// failure unwraps to ErrBookNotFound:
//
//	if errors.Is(err, addressbook.ErrValidation) {
//	    // reject the request
//	}
var (
	// ErrValidation is the category of all *ValidationError values.
	ErrValidation = errors.New("addressbook: invalid")

	// ErrBookNotFound is the category of all *LookupError values.
	ErrBookNotFound = errors.New("addressbook: book not found")
)

// Validation failures. Their messages are part of the public contract.
var (
	// ErrNameRequired is returned when a contact or book name is blank.
	ErrNameRequired = &ValidationError{Reason: "Name is mandatory"}

	// ErrPhoneRequired is returned when a contact phone is blank.
	ErrPhoneRequired = &ValidationError{Reason: "Phone is mandatory"}

	// ErrContactRequired is returned when a nil contact is submitted.
	ErrContactRequired = &ValidationError{Reason: "A contact is mandatory"}
)

// ValidationError reports input that was rejected before any state changed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// LookupError reports an operation on an address book that does not exist.
type LookupError struct {
	Book string
}

func (e *LookupError) Error() string { return "Address book not found: " + e.Book }

// Unwrap returns ErrBookNotFound.
func (e *LookupError) Unwrap() error { return ErrBookNotFound }
