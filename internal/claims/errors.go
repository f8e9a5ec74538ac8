package claims

import "errors"

var (
	// ErrMissingDocuments is returned when a claim assessment is requested
	// before all required document categories are uploaded.
	ErrMissingDocuments = errors.New("missing required documents")

	// ErrInvalidInput covers malformed upload requests.
	ErrInvalidInput = errors.New("invalid input")
)
