// Package errors provides structured, actionable error values for storebind.
//
// Every error raised by the binding engine carries a stable code (e.g. "B010")
// that maps to a short message, a longer explanation and a fix hint. Public
// packages expose typed errors (subscription.ConfigurationError,
// selector.DerivationResultError) that embed *BindError, so callers can use
// errors.As on the typed error and still print the full diagnostic.
//
// # Error Categories
//
//   - config: invalid setup, raised synchronously at construction time
//   - derivation: a selector stage failed or returned a non-mapping value
//   - runtime: scheduling faults such as runaway dispatch loops
//   - store: faults raised by the reference store
//
// # Usage
//
//	err := errors.New("B001").
//	    WithNode("TodoList").
//	    WithSuggestion("Connect the node under a Provider")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR B001: Store not found
//	//
//	//   node: TodoList
//	//
//	//   A connected node needs a store ...
//	//
//	//   Hint: Connect the node under a Provider
package errors
