package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := E(NotFound, "item not found")
	require.Equal(t, NotFound, KindOf(err))
	require.Equal(t, "item not found", err.Error())

	// survives wrapping
	wrapped := fmt.Errorf("create booking: %w", err)
	require.Equal(t, NotFound, KindOf(wrapped))

	require.Equal(t, Kind(""), KindOf(errors.New("plain")))
	require.Equal(t, Kind(""), KindOf(nil))
}
