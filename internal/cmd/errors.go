package cmd

import (
	"errors"
	"fmt"

	oerrors "github.com/polyseam/cndi/internal/errors"
	"github.com/polyseam/cndi/internal/output"
	"github.com/polyseam/cndi/internal/prompt"
)

// ExitCodeFromError determines the appropriate exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *oerrors.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, oerrors.ErrValidation):
		return ExitValidationError
	case errors.Is(err, oerrors.ErrConnectivity):
		return ExitConnectivityError
	case errors.Is(err, oerrors.ErrPermission):
		return ExitPermissionDenied
	case errors.Is(err, oerrors.ErrNotFound):
		return ExitNotFound
	default:
		return ExitGeneralError
	}
}

// exitError logs err once and wraps it with its exit code so main does not
// print it again. An aborted prompt exits quietly.
func exitError(err error) error {
	if err == nil {
		return nil
	}

	var exitErr *oerrors.ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	code := ExitCodeFromError(err)
	if errors.Is(err, prompt.ErrAborted) {
		output.Warn("aborted")
	} else {
		output.Error(err.Error())
	}
	return &oerrors.ExitError{Code: code, Err: err, Printed: true}
}

// fetchError adds the template source to a failed fetch. Other errors pass
// through unchanged.
func fetchError(g *GlobalConfig, identifier string, err error) error {
	if err == nil || !errors.Is(err, oerrors.ErrConnectivity) {
		return err
	}
	return oerrors.NewConnectivityError(err.Error(), map[string]string{
		"template": identifier,
		"baseURL":  g.BaseURL(),
	}, "Check the network connection and --templates-base-url.")
}

// fileError reports a filesystem failure on path.
func fileError(action, path string, err error) error {
	return oerrors.NewPermissionError(fmt.Sprintf("%s: %v", action, err),
		map[string]string{"path": path}, "Check the permissions of the directory.")
}
