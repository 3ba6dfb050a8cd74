package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Cannot read build_config.json",
		Detail:   "The configuration file exists but could not be read. Built-in defaults are used instead.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid build_config.json",
		Detail:   "The configuration file is not valid JSON. Built-in defaults are used instead.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Cannot write build_config.json",
		Detail:   "The default configuration could not be saved. Built-in defaults are used in memory.",
	},
	"E110": {
		Category: CategoryConfig,
		Message:  "Cannot read gradle.properties",
		Detail:   "The properties file could not be read. Default mod name and version are used.",
	},

	// ============================================
	// Invocation Errors (E120-E129)
	// ============================================

	"E120": {
		Category: CategoryInvocation,
		Message:  "Gradle wrapper not found",
		Detail:   "The Gradle wrapper script does not exist in the project root.",
	},
	"E121": {
		Category: CategoryInvocation,
		Message:  "Gradle build failed",
		Detail:   "The Gradle wrapper exited with a non-zero status.",
	},
	"E122": {
		Category: CategoryInvocation,
		Message:  "Gradle could not be started",
		Detail:   "The Gradle wrapper exists but could not be executed.",
	},

	// ============================================
	// Artifact Errors (E130-E139)
	// ============================================

	"E130": {
		Category: CategoryArtifact,
		Message:  "No jar found for target",
		Detail:   "None of the search patterns matched a jar in the target's output directory.",
	},
	"E131": {
		Category: CategoryArtifact,
		Message:  "Artifact copy failed",
		Detail:   "A jar could not be copied to its destination.",
	},

	// ============================================
	// Archive Errors (E140-E149)
	// ============================================

	"E140": {
		Category: CategoryArchive,
		Message:  "Archive write failed",
		Detail:   "An archive folder could not be prepared or populated.",
	},
	"E141": {
		Category: CategoryArchive,
		Message:  "Archive upload failed",
		Detail:   "An archived file could not be uploaded to the S3 mirror.",
	},

	// ============================================
	// Cleanup Errors (E150-E159)
	// ============================================

	"E150": {
		Category: CategoryCleanup,
		Message:  "Cleanup failed",
		Detail:   "A build folder could not be removed completely. Check permissions and file locks.",
	},

	// ============================================
	// Server Errors (E160-E169)
	// ============================================

	"E160": {
		Category: CategoryServer,
		Message:  "Archive server failed",
		Detail:   "The archive browser could not start or stopped unexpectedly.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
