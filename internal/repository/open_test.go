package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"staffdir/internal/config"
)

func TestOpen_SQLiteReset(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		StoreDriver: config.StoreSQLite,
		SQLitePath:  "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}

	first, closeFirst, err := Open(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeFirst(ctx)
	require.NoError(t, first.Create(ctx, employee("user_1")))

	cfg.ResetDB = true
	second, closeSecond, err := Open(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeSecond(ctx)

	count, err := second.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), &config.Config{StoreDriver: "postgres"}, zap.NewNop())

	assert.EqualError(t, err, `unknown store driver "postgres"`)
}
