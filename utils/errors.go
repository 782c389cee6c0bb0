package utils

import "errors"

// ErrConfiguration is wrapped by every error caused by invalid input parameters
var ErrConfiguration = errors.New("configuration error")
