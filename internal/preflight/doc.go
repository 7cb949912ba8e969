// Package preflight provides readiness checks for the tools, services, and
// paths an autosub run depends on.
//
// The CLI "autosub check" command prints every result; the main command
// runs the required-binary subset before touching any input so a missing
// ffmpeg or uvx fails fast. Checks for disabled features are skipped.
package preflight
