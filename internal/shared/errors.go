package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and service errors
	ErrAPIRequest   = fmt.Errorf("API request failed")
	ErrUnauthorized = fmt.Errorf("not authorized")
	ErrRateLimited  = fmt.Errorf("rate limited")
	ErrJobNotFound  = fmt.Errorf("job not found")

	// Import submission errors
	ErrSubmitFailed   = fmt.Errorf("import submission failed")
	ErrUnknownDialect = fmt.Errorf("unrecognized CSV dialect")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
