package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/control-plane/schema-registry-mcp/internal/apierrors"
)

func TestExitCodeFor_ConfigErrorsMapToExitCodeConfigError(t *testing.T) {
	cases := []apierrors.Code{
		apierrors.CodeConfigInvalid,
		apierrors.CodeRegistryDuplicateName,
		apierrors.CodeRegistryDuplicateURL,
	}
	for _, code := range cases {
		err := apierrors.New(code, "bad config")
		assert.Equal(t, ExitCodeConfigError, exitCodeFor(err), "code %s", code)
	}
}

func TestExitCodeFor_OtherCodedErrorsMapToExitCodeError(t *testing.T) {
	err := apierrors.New(apierrors.CodeRegistryNotFound, "no such registry")
	assert.Equal(t, ExitCodeError, exitCodeFor(err))
}

func TestExitCodeFor_PlainErrorMapsToExitCodeError(t *testing.T) {
	assert.Equal(t, ExitCodeError, exitCodeFor(errors.New("boom")))
}
