package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// catalog errors
	ErrUnknownProviderKey   = errors.New("unknown provider key")
	ErrCatalogMisconfigured = errors.New("provider catalog misconfigured")

	// account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrOwnerMissing    = errors.New("owner user id is missing")
)

// PersistenceError marks a fault in the credential store or its encryption
// layer. Callers must surface it, never substitute a default credential.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("persistence failure in %s", e.Op)
	}
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func WrapPersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
