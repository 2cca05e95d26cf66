package db

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/quitsmart/internal/store"
	cfgpkg "github.com/fatflowers/quitsmart/pkg/config"
)

func TestNewStore_MemoryDriver(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := &cfgpkg.Config{Database: cfgpkg.DBConfig{Driver: cfgpkg.DBDriverMemory}}

	s, err := NewStore(lc, zap.NewNop().Sugar(), cfg)
	require.NoError(t, err)
	require.IsType(t, &store.MemoryStore{}, s)
}

func TestNewDB_EmptyDSN(t *testing.T) {
	_, err := NewDB(zap.NewNop().Sugar(), &cfgpkg.Config{})
	require.ErrorIs(t, err, gorm.ErrInvalidDB)
}
