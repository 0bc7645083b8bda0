package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (B001-B009)
	// ============================================

	"B001": {
		Category:   CategoryConfig,
		Message:    "Store not found",
		Detail:     "A connected node needs a store. It is resolved from the parent passed to Connect: a Provider, another Connector, or a detached store.",
		Suggestion: "Connect the node under a Provider, or pass bind.Detached(store) as the parent",
	},
	"B002": {
		Category:   CategoryConfig,
		Message:    "Expected listener to be a function",
		Detail:     "Subscribe was called with a nil listener. Listeners are invoked on every notify pass and must be callable.",
	},
	"B003": {
		Category:   CategoryConfig,
		Message:    "Invalid binding option",
		Detail:     "One of the options passed to bind.New is not usable, for example a nil action creator or an empty field name.",
	},

	// ============================================
	// Derivation Errors (B010-B019)
	// ============================================

	"B010": {
		Category:   CategoryDerivation,
		Message:    "Selector stage must return a props mapping",
		Detail:     "mapStateToProps, mapDispatchToProps and mergeProps must return a non-nil Props value. The error stays raised until the node is unmounted and connected again.",
		Suggestion: "Return selector.Props{} instead of nil",
	},
	"B011": {
		Category: CategoryDerivation,
		Message:  "Selector stage failed",
		Detail:   "A selector stage returned an error. The error stays raised until the node is unmounted and connected again.",
	},

	// ============================================
	// Runtime Errors (B020-B029)
	// ============================================

	"B020": {
		Category:   CategoryRuntime,
		Message:    "Flush storm: dispatch loop detected",
		Detail:     "Listeners kept dispatching while the tree was being notified, so the flush never settled.",
		Suggestion: "Guard dispatches made from selectors or update callbacks so they stop once state settles",
	},

	// ============================================
	// Store Errors (B030-B039)
	// ============================================

	"B030": {
		Category: CategoryStore,
		Message:  "Reducers may not dispatch actions",
		Detail:   "Dispatch was called while the reducer was still running.",
	},

	// ============================================
	// Config File Errors (B040-B049)
	// ============================================

	"B040": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Detail:     "storebind.yaml or storebind.json could not be parsed or failed validation.",
		Suggestion: "Run 'storebind demo --help' to see the expected settings",
	},
	"B041": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create storebind.yaml, or pass --config with a file path",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
