package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessorError_IsMatchesKind(t *testing.T) {
	err := Upstream("airtime", 502, "bad gateway")

	assert.True(t, errors.Is(err, ErrUpstream))
	assert.False(t, errors.Is(err, ErrDecode))
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestProcessorError_IsSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("purchase airtime: %w", ConfigMissing("airtime", "AIRTIME_API_KEY"))

	assert.True(t, errors.Is(err, ErrConfigMissing))
}

func TestProcessorError_UnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transport("bluecode", cause)

	assert.True(t, errors.Is(err, ErrTransport))
	assert.True(t, errors.Is(err, cause))
}

func TestProcessorError_MessageCarriesDiagnostics(t *testing.T) {
	err := Upstream("dstv", 503, "<html>maintenance</html>")

	assert.Contains(t, err.Error(), "dstv")
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, "<html>maintenance</html>", err.Body)
}

func TestPending_DistinctFromHardFailure(t *testing.T) {
	pending := Pending("dstv", "requery status -1")
	hard := Internal("dstv", "requery status 0")

	assert.True(t, errors.Is(pending, ErrRequeryPending))
	assert.False(t, errors.Is(pending, ErrInternal))
	assert.True(t, errors.Is(hard, ErrInternal))
	assert.False(t, errors.Is(hard, ErrRequeryPending))
}
