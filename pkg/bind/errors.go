package bind

import (
	binderrors "github.com/vango-dev/storebind/internal/errors"
	"github.com/vango-dev/storebind/pkg/selector"
	"github.com/vango-dev/storebind/pkg/subscription"
)

// ConfigurationError reports an invalid setup, raised synchronously by
// NewProvider and Binding.Connect.
type ConfigurationError = subscription.ConfigurationError

// DerivationResultError reports a failed selector stage. It is sticky per
// Connector.
type DerivationResultError = selector.DerivationResultError

func storeNotFound(node string) error {
	cfgErr := subscription.NewConfigurationError("B001")
	if node != "" {
		cfgErr.WithNode(node)
	}
	return cfgErr
}

func asConfigurationError(err error, node string) error {
	return &ConfigurationError{BindError: binderrors.FromError(err, "B003").WithNode(node)}
}
