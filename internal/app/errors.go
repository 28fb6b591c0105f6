package service

import (
	"errors"
	"fmt"

	"github.com/okian/aeroscore/internal/adapters/repository"
	"github.com/okian/aeroscore/internal/validation"
)

// Error kinds returned by the service. Callers match them with errors.Is.
var (
	ErrNotFound = repository.ErrNotFound
	ErrConflict = repository.ErrConflict
	ErrInvalid  = validation.ErrInvalid

	ErrUnknownCategory = fmt.Errorf("%w: unknown category", validation.ErrInvalid)
	ErrNoStore         = errors.New("service requires a store")
)
