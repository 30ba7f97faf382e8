package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E099)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Store hook used outside component render",
		Detail:   "Store hooks read the component's owner and re-render trigger, so they must run while a component is rendering.",
		DocURL:   "https://vango.dev/docs/store/errors/E001",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Store created with nil setup function",
		Detail:   "store.Create needs a setup function that returns the initial state and actions.",
		DocURL:   "https://vango.dev/docs/store/errors/E002",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "Render budget exceeded",
		Detail:   "The runtime kept re-rendering components after the configured number of flush passes. An update that always re-triggers itself is the usual cause.",
		DocURL:   "https://vango.dev/docs/store/errors/E003",
	},
	"E004": {
		Category: CategoryRuntime,
		Message:  "Store action not found",
		Detail:   "The state has no function stored under the requested key.",
		DocURL:   "https://vango.dev/docs/store/errors/E004",
	},
	"E005": {
		Category: CategoryRuntime,
		Message:  "Hook order changed",
		Detail:   "Hooks must be called in the same order on every render. Do not call hooks inside conditions or loops.",
		DocURL:   "https://vango.dev/docs/store/errors/E005",
	},
	"E006": {
		Category: CategoryRuntime,
		Message:  "Component instance disposed",
		Detail:   "The component has been unmounted and can no longer render.",
		DocURL:   "https://vango.dev/docs/store/errors/E006",
	},
	"E007": {
		Category: CategoryRuntime,
		Message:  "Reducer hook slot mismatch",
		Detail:   "The hook slot at this position holds a value of a different type. The component's hook order changed between renders.",
		DocURL:   "https://vango.dev/docs/store/errors/E007",
	},

	// ============================================
	// Config Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "vango-store.json could not be parsed.",
		DocURL:   "https://vango.dev/docs/store/errors/E100",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range.",
		DocURL:   "https://vango.dev/docs/store/errors/E101",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid environment override",
		Detail:   "A VANGO_STORE_* environment variable could not be parsed.",
		DocURL:   "https://vango.dev/docs/store/errors/E102",
	},

	// ============================================
	// CLI Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryCLI,
		Message:  "Metrics server failed",
		Detail:   "The metrics HTTP server could not listen on the configured address.",
		DocURL:   "https://vango.dev/docs/store/errors/E120",
	},
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
