package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatusCode(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:         400,
		KindPersistence:        500,
		KindStorageUnavailable: 500,
		KindNotFound:           404,
		KindRateLimited:        429,
		KindInternal:           500,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.StatusCode(), kind.String())
	}
}

func TestKindOfWrapped(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("insert image: %w", StorageUnavailable("Database unavailable", cause))

	assert.Equal(t, KindStorageUnavailable, KindOf(err))
	assert.True(t, Is(err, KindStorageUnavailable))
	assert.False(t, Is(err, KindPersistence))
	assert.ErrorIs(t, err, cause)
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "No file uploaded", Validation("No file uploaded").Error())
	assert.Equal(t, "Failed to save image: disk full",
		Internal("Failed to save image", errors.New("disk full")).Error())
}
