// Package config holds ambient toggles and project configuration shared
// across the compiler, CLI, and test tooling.
package config

// Version is the current fluxc version, set at build time via -ldflags.
var Version = "0.1.0"

const SourceFileExt = ".flux"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".flux"}

// TrimSourceExt removes a recognized source extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt reports whether path ends with a recognized source
// extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode is a process-wide test-run toggle. No code in this
// repository sets or reads it, and fluxc has only the `check` command.
var IsTestMode = false

// NormalizeTVars is a process-wide printing toggle. No code reads it:
// Monotype.String() always prints raw t<N> ids, and CanonicalString
// always renames variables to letters.
var NormalizeTVars = true

// ColorDiagnostics controls ANSI color in rendered diagnostics. The CLI
// sets this from an isatty check unless overridden by flag or NO_COLOR.
var ColorDiagnostics = false
