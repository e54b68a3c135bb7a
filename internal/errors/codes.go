package errors

// Error codes for the scriptcc driver.
// These codes appear in error messages and in documentation to provide
// consistent identification across the toolchain.
//
// Error code ranges:
// E0001-E0019: configuration errors (flags, settings, targets)
// E0020-E0039: frontend/compile errors
// E0040-E0059: link and library-build errors
// E0060-E0079: translation and transform errors
// E0080-E0099: output assembly errors
const (
	// E0001: malformed settings override syntax
	ErrorOverrideSyntax = "E0001"

	// E0002: optimization level outside 0-3
	ErrorBadOptLevel = "E0002"

	// E0003: unrecognized target suffix
	ErrorBadTarget = "E0003"

	// E0004: type mismatch assigning a known settings key
	ErrorOverrideType = "E0004"

	// E0005: incompatible flag combination
	ErrorBadUsage = "E0005"

	// E0006: unrecognized input kind
	ErrorBadInput = "E0006"

	// E0007: unknown command-line flag
	ErrorUnknownFlag = "E0007"

	// E0008: malformed command-line flag value
	ErrorBadFlagValue = "E0008"

	// E0020: frontend did not produce an expected object
	ErrorCompileFailed = "E0020"

	// E0040: bitcode link failed
	ErrorLinkFailed = "E0040"

	// E0041: support-library builder failed
	ErrorLibraryBuild = "E0041"

	// E0060: bitcode-to-script translation failed
	ErrorTranslateFailed = "E0060"

	// E0061: external transform hook failed or left no output
	ErrorTransformHook = "E0061"

	// E0080: placeholder token missing from a shell template
	ErrorTemplateToken = "E0080"
)
