package compress

import "errors"

// Parse errors.
var (
	ErrParseFailed = errors.New("format parser failed to produce a valid tree")
)

// Budget errors.
var (
	ErrBudgetTooSmall = errors.New("budget too small even for overview rendering")
)

// Option validation errors.
var (
	ErrInvalidTemperature = errors.New("temperature must be greater than zero")
	ErrInvalidBudget      = errors.New("budget dimensions must be positive")
	ErrInvalidPattern     = errors.New("grep pattern failed to compile")
)
