package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdc-cast/expense-approval/internal/config"
	"github.com/mdc-cast/expense-approval/internal/models"
)

func setupTestCache(t *testing.T) *Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		Addr:     mr.Addr(),
		Password: "",
		DB:       0,
		User:     "",
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache
}

func TestSetAndGet(t *testing.T) {
	cache := setupTestCache(t)

	expected := models.Expense{
		UID:      "exp-1",
		UserUID:  "user-1",
		ItemName: "Workshop materials",
		Amount:   125.50,
		Status:   models.ExpenseStatusPending,
	}
	err := cache.Set("expense:exp-1", expected, time.Minute)
	require.NoError(t, err)

	var actual models.Expense
	found, err := cache.Get("expense:exp-1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected.UID, actual.UID)
	assert.Equal(t, expected.ItemName, actual.ItemName)
	assert.Equal(t, expected.Amount, actual.Amount)
}

func TestGetNotFound(t *testing.T) {
	cache := setupTestCache(t)

	var out models.Expense
	found, err := cache.Get("no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache := setupTestCache(t)

	err := cache.Set("key", "value", time.Minute)
	require.NoError(t, err)

	err = cache.Invalidate("key")
	require.NoError(t, err)

	var out string
	found, err := cache.Get("key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache := setupTestCache(t)

	err := cache.DB.Set(context.Background(), "bad", []byte("not-json"), time.Minute).Err()
	require.NoError(t, err)

	var out models.Expense
	found, err := cache.Get("bad", &out)
	require.Error(t, err)
	assert.False(t, found)
}
