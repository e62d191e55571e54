package generation

import "errors"

var errEmptyCompletion = errors.New("provider returned no choices")
