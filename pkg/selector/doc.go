// Package selector derives the props of a connected node from the store
// state, the node's own props and the store's dispatch function.
//
// A Selector composes three stages:
//
//	stateProps    = mapState(state[, own])
//	dispatchProps = mapDispatch(dispatch[, own])
//	final         = merge(stateProps, dispatchProps, own)
//
// Each stage declares whether it reads own props. A stage built with
// FromState or FromDispatch is cached across own-props changes; a stage built
// with FromStateAndProps or FromDispatchAndProps reruns when own props change.
// StateFactory and DispatchFactory defer stage creation to the node, so a
// stage can keep memoization state private to one node.
//
// Results are referentially stable: a stage whose new output is
// ShallowEqual to its previous output keeps the previous map, so a caller can
// detect "nothing changed" with SameProps.
//
// A failing stage poisons the Selector: the same *DerivationResultError is
// returned by every later Select call.
package selector
