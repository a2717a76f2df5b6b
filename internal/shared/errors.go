package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors
	ErrNotReady      = fmt.Errorf("dashboard not ready")
	ErrStaleSnapshot = fmt.Errorf("snapshot superseded by a newer load")
	ErrEmptySnapshot = fmt.Errorf("fetch returned no snapshot")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrUnauthorized       = fmt.Errorf("unauthorized")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Catalog errors
	ErrEmptyCatalog  = fmt.Errorf("catalog is empty")
	ErrInvalidCSV    = fmt.Errorf("invalid CSV")
	ErrUnknownColumn = fmt.Errorf("unknown column")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
