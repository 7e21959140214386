package template

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	oerrors "github.com/polyseam/cndi/internal/errors"
	"github.com/polyseam/cndi/internal/template/resolve"
)

func TestError(t *testing.T) {
	err := newError(CodeBlockNotFound, "network", "no block named %q", "network")

	assert.Equal(t, `template error 1204 BlockNotFound [network]: no block named "network"`, err.Error())
	assert.ErrorIs(t, err, oerrors.ErrNotFound)
	assert.Equal(t, CodeBlockNotFound, CodeOf(fmt.Errorf("outer: %w", err)))
	assert.Equal(t, Code(0), CodeOf(errors.New("plain")))
}

func TestError_WrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := wrapError(CodePromptFailed, "name", cause, "asking prompt")

	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, oerrors.ErrValidation)
	assert.Contains(t, err.Error(), "boom")
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "ExtraFileKey", CodeExtraFileKey.String())
	assert.Equal(t, "Code(42)", Code(42).String())
}

func TestResolutionError(t *testing.T) {
	tests := []struct {
		err          error
		kind         resolve.Kind
		wantCode     Code
		wantSentinel error
	}{
		{fmt.Errorf("%w: 404", resolve.ErrBadStatus), resolve.KindTemplate, CodeBadStatus, oerrors.ErrConnectivity},
		{fmt.Errorf("%w: refused", resolve.ErrFetch), resolve.KindBlock, CodeFetchFailed, oerrors.ErrConnectivity},
		{fmt.Errorf("%w: missing", resolve.ErrRead), resolve.KindBlock, CodeReadFailed, oerrors.ErrNotFound},
		{resolve.ErrBareName, resolve.KindString, CodeStringNotFound, oerrors.ErrNotFound},
		{resolve.ErrBareName, resolve.KindBlock, CodeBlockNotFound, oerrors.ErrNotFound},
		{resolve.ErrInvalidPath, resolve.KindTemplate, CodeInvalidPath, oerrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode.String(), func(t *testing.T) {
			err := resolutionError("id", tt.kind, tt.err)
			assert.Equal(t, tt.wantCode, err.Code)
			assert.ErrorIs(t, err, tt.wantSentinel)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
