// Package cmd provides command implementations for the cndi CLI.
package cmd

// Exit codes.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitValidationError indicates a malformed template, answer or config.
	ExitValidationError = 2

	// ExitConnectivityError indicates a remote template, block or file could not be fetched.
	ExitConnectivityError = 3

	// ExitPermissionDenied indicates an output file or directory could not be written.
	ExitPermissionDenied = 4

	// ExitNotFound indicates a template, block, string or file was not found.
	ExitNotFound = 5
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitValidationError:
		return "Validation Error"
	case ExitConnectivityError:
		return "Connectivity Error"
	case ExitPermissionDenied:
		return "Permission Denied"
	case ExitNotFound:
		return "Not Found"
	default:
		return "Unknown"
	}
}
