/*
Package errors provides semantic error types for the label registry.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound           = errors.New("entity not found")
	    ErrDuplicateName      = errors.New("name already in use")
	    ErrInvalidInput       = errors.New("invalid input")
	    ErrInvariantViolation = errors.New("registry invariant violated")
	    ErrNotLoaded          = errors.New("registry not loaded")
	    ErrClosed             = errors.New("registry closed")
	)

Usage:

	label, err := reg.Create("Work")
	if err != nil {
	    if errors.IsDuplicateName(err) {
	        // another label already normalizes to "work"
	        return reg.GetOrCreate("Work")
	    }
	    return labels.Entry{}, err
	}

	// Create typed errors
	err := errors.NewNotFoundError("label", "work")
	err := errors.NewDuplicateNameError("Work", "work")
	err := errors.NewValidationError("name", "must not be blank")

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
