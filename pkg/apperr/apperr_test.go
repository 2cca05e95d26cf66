package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKinds_AreWrapFriendly(t *testing.T) {
	err := fmt.Errorf("upgrade: %w", Conflict("account %s already has an active subscription", "a1"))
	require.True(t, errors.Is(err, ErrConflict))
	require.False(t, errors.Is(err, ErrValidation))
	require.Contains(t, err.Error(), "a1")
}

func TestKind(t *testing.T) {
	require.Equal(t, ErrNotFound, Kind(NotFound("stage")))
	require.Equal(t, ErrEntitlement, Kind(fmt.Errorf("x: %w", Entitlement("premium"))))
	require.Nil(t, Kind(errors.New("db down")))
}
