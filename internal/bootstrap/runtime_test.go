package bootstrap

import (
	"context"
	"testing"

	"postboard/internal/models"
	"postboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDemoIfEmpty(t *testing.T) {
	t.Parallel()
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	require.NoError(t, seedDemoIfEmpty(ctx, db))
	require.NoError(t, seedDemoIfEmpty(ctx, db))

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}
