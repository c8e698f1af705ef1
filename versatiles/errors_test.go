package versatiles

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIoErrorUnwrap(t *testing.T) {
	inner := errors.New("disk gone")
	err := &IoError{Op: "read", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "read")
}

func TestWrappedErrorChainPreservesTypedAccess(t *testing.T) {
	inner := &CompressionError{Reason: "bad stream", Err: errors.New("corrupt")}
	wrapped := fmt.Errorf("opening container: %w", inner)

	var ce *CompressionError
	assert.ErrorAs(t, wrapped, &ce)
	assert.Equal(t, "bad stream", ce.Reason)
}

func TestMissingCsvKeyErrorMessage(t *testing.T) {
	err := &MissingCsvKeyError{Field: "feature_id"}
	assert.Contains(t, err.Error(), "feature_id")
}

func TestCoordOutOfRangeErrorMessage(t *testing.T) {
	err := &CoordOutOfRangeError{Z: 3, X: 8, Y: 0}
	assert.Contains(t, err.Error(), "z=3")
}
