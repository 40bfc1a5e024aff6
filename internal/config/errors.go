package config

import "errors"

var ErrFileDoesNotExist = errors.New("config file does not exist")
var ErrReadConfigFail = errors.New("failed to read config file")
var ErrConfigParsingFail = errors.New("failed to parse config file")

// ErrInvalidConfig is returned by Build() when a field is out of the range
// spec.md §3 requires of it. Callers at the control-API boundary (internal/
// httpapi) map this to InvalidInput/400.
var ErrInvalidConfig = errors.New("invalid config")
