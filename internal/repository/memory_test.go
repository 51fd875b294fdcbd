package repository

import (
	"context"
	"testing"
	"time"

	"cleanhive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateRepository(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetSession", func(t *testing.T) {
		session := &models.Session{Token: "m1", UserID: 1, Role: models.RoleAdmin}
		require.NoError(t, repo.SetSession(ctx, session))

		got, err := repo.GetSession(ctx, "m1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(1), got.UserID)
	})

	t.Run("ExpiredSessionEvicted", func(t *testing.T) {
		session := &models.Session{Token: "m2", UserID: 2, ExpiresAt: time.Now().Add(-time.Second)}
		require.NoError(t, repo.SetSession(ctx, session))

		got, err := repo.GetSession(ctx, "m2")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearSession", func(t *testing.T) {
		session := &models.Session{Token: "m3", UserID: 3}
		require.NoError(t, repo.SetSession(ctx, session))
		require.NoError(t, repo.ClearSession(ctx, "m3"))

		got, err := repo.GetSession(ctx, "m3")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		key := "mem:limit"
		for i := 0; i < 3; i++ {
			allowed, err := repo.CheckRateLimit(ctx, key, 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := repo.CheckRateLimit(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("RateLimitWindowReset", func(t *testing.T) {
		key := "mem:reset"
		allowed, err := repo.CheckRateLimit(ctx, key, 1, time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)

		time.Sleep(5 * time.Millisecond)

		allowed, err = repo.CheckRateLimit(ctx, key, 1, time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
