package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
)

func mustKey(t *testing.T, date, kind string) domain.ShiftKey {
	t.Helper()
	key, err := domain.ParseShiftKey(date, kind)
	require.NoError(t, err)
	return key
}
