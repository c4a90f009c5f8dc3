package errors

// Error codes.
const (
	CodeMissingNodeOp   = "W100"
	CodeInvalidNodeOps  = "W101"
	CodeValidateFailed  = "W110"
	CodeSetupFailed     = "W111"
	CodeInvalidMeta     = "W112"
	CodeDuplicateExt    = "W113"
	CodeUnknownExt      = "W114"
	CodeUnknownTrigger  = "W115"
	CodeHotInvalidated  = "W120"
	CodeHotRender       = "W121"
	CodeHotModule       = "W122"
	CodeInvalidConfig   = "W130"
	CodeConfigNotFound  = "W131"
	CodeUnknownTemplate = "W140"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Renderer Errors (W100-W109)
	// ============================================

	CodeMissingNodeOp: {
		Category: CategoryRenderer,
		Message:  "Node operation missing",
		Detail:   "The backend does not implement every operation of the node-operations contract.",
	},
	CodeInvalidNodeOps: {
		Category: CategoryRenderer,
		Message:  "Invalid node operations",
		Detail:   "The node-operations table is nil.",
	},

	// ============================================
	// Extension Errors (W110-W119)
	// ============================================

	CodeValidateFailed: {
		Category: CategoryExtension,
		Message:  "Extension validation failed",
	},
	CodeSetupFailed: {
		Category: CategoryExtension,
		Message:  "Extension setup failed",
	},
	CodeInvalidMeta: {
		Category: CategoryExtension,
		Message:  "Invalid extension metadata",
	},
	CodeDuplicateExt: {
		Category: CategoryExtension,
		Message:  "Extension already installed",
	},
	CodeUnknownExt: {
		Category: CategoryExtension,
		Message:  "Extension not installed",
	},
	CodeUnknownTrigger: {
		Category: CategoryExtension,
		Message:  "Trigger not available",
		Detail:   "No enabled extension provides this trigger on the current platform.",
	},

	// ============================================
	// HMR Errors (W120-W129)
	// ============================================

	CodeHotInvalidated: {
		Category: CategoryHMR,
		Message:  "Hot update invalidated",
		Detail:   "A non-component export changed; a full reload is required.",
	},
	CodeHotRender: {
		Category: CategoryHMR,
		Message:  "Hot component render failed",
	},
	CodeHotModule: {
		Category: CategoryHMR,
		Message:  "Hot module unavailable",
	},

	// ============================================
	// Configuration Errors (W130-W139)
	// ============================================

	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration not found",
		Detail:   "No weave.json, weave.yaml or weave.toml found.",
	},

	// ============================================
	// Template Errors (W140-W149)
	// ============================================

	CodeUnknownTemplate: {
		Category: CategoryRenderer,
		Message:  "Unsupported template",
	},
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
