package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(KindStorage, "Failed to upload emoji")
	assert.Equal(t, KindStorage, KindOf(err))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(0), KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := Wrap(KindProvider, "Failed to generate emoji", errors.New("502 Bad Gateway"))
	outer := fmt.Errorf("handling request: %w", inner)

	assert.Equal(t, KindProvider, KindOf(outer))
	assert.True(t, IsKind(outer, KindProvider))
	assert.False(t, IsKind(outer, KindStorage))
}

func TestWrapCarriesDetailAndCause(t *testing.T) {
	cause := errors.New("insufficient credit")
	err := Wrap(KindProvider, "Failed to generate emoji", cause)

	assert.Equal(t, "insufficient credit", err.Detail)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "provider")
	assert.Contains(t, err.Error(), "Failed to generate emoji")
}

func TestWithDetail(t *testing.T) {
	err := New(KindUnexpectedShape, "Unexpected output format").WithDetail("got %d outputs", 2)
	assert.Equal(t, "got 2 outputs", err.Detail)
}
