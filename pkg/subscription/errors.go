package subscription

import (
	"errors"
	"fmt"

	binderrors "github.com/vango-dev/storebind/internal/errors"
)

// ConfigurationError reports an invalid setup detected at bind or
// construction time. It is never retried.
type ConfigurationError struct {
	*binderrors.BindError
}

// ErrFlushStorm is returned when a flush keeps being re-triggered by commits
// made during its own passes.
var ErrFlushStorm = errors.New("subscription: flush storm")

// NewConfigurationError builds a ConfigurationError from a registry code.
func NewConfigurationError(code string) *ConfigurationError {
	return &ConfigurationError{BindError: binderrors.New(code)}
}

func stormError(passes int) error {
	return binderrors.New("B020").
		WithDetail(fmt.Sprintf("The flush was re-triggered on each of its %d passes.", passes)).
		Wrap(ErrFlushStorm)
}
