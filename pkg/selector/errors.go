package selector

import (
	"errors"

	binderrors "github.com/vango-dev/storebind/internal/errors"
)

// Stage names one step of the pipeline.
type Stage string

const (
	StageMapState    Stage = "mapStateToProps"
	StageMapDispatch Stage = "mapDispatchToProps"
	StageMerge       Stage = "mergeProps"
)

// ErrNotMapping is wrapped by a DerivationResultError raised because a stage
// returned a nil map.
var ErrNotMapping = errors.New("selector: stage result is not a props mapping")

// DerivationResultError reports a failed stage. Once returned by a Selector,
// the same value is returned by every later Select call.
type DerivationResultError struct {
	*binderrors.BindError

	// Stage is the failing stage.
	Stage Stage

	// NodeName is the display name of the node owning the Selector.
	NodeName string
}

func newDerivationError(stage Stage, node string, cause error) *DerivationResultError {
	var be *binderrors.BindError
	if cause == nil {
		be = binderrors.New("B010").Wrap(ErrNotMapping)
	} else {
		be = binderrors.New("B011").Wrap(cause)
	}
	be.WithMessage("%s: %s", stage, be.Message).WithNode(node)
	return &DerivationResultError{
		BindError: be,
		Stage:     stage,
		NodeName:  node,
	}
}
