package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer/internal/models"
)

func setupRedisStore(t *testing.T, ttl time.Duration) (SessionStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisSessionStore(client, ttl), mr
}

func sessionStores(t *testing.T) map[string]SessionStore {
	redisStore, _ := setupRedisStore(t, time.Hour)
	return map[string]SessionStore{
		"redis":  redisStore,
		"memory": NewMemorySessionStore(time.Hour),
	}
}

func TestSessionStore_MarkSavedOncePerUserAndRole(t *testing.T) {
	ctx := context.Background()

	for name, store := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			first, err := store.MarkSaved(ctx, "s1", "Octo", "Data Scientist")
			require.NoError(t, err)
			assert.True(t, first)

			again, err := store.MarkSaved(ctx, "s1", "octo", "Data Scientist")
			require.NoError(t, err)
			assert.False(t, again)

			otherRole, err := store.MarkSaved(ctx, "s1", "octo", "Python Developer")
			require.NoError(t, err)
			assert.True(t, otherRole)

			otherSession, err := store.MarkSaved(ctx, "s2", "octo", "Data Scientist")
			require.NoError(t, err)
			assert.True(t, otherSession)

			sess, err := store.Describe(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, []string{"octo|Data Scientist", "octo|Python Developer"}, sess.SavedKeys)
			assert.False(t, sess.HasReport)
		})
	}
}

func TestSessionStore_Reports(t *testing.T) {
	ctx := context.Background()

	for name, store := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.GetReport(ctx, "s1")
			assert.ErrorIs(t, err, ErrReportNotFound)

			report := &models.AnalysisReport{
				ID:       "r-1",
				Role:     "Data Scientist",
				ATSScore: 66.67,
				Keywords: models.KeywordResult{Found: []string{"Python"}, Missing: []string{"SQL"}},
			}
			require.NoError(t, store.PutReport(ctx, "s1", report))

			got, err := store.GetReport(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, "r-1", got.ID)
			assert.Equal(t, 66.67, got.ATSScore)
			assert.Equal(t, []string{"SQL"}, got.Keywords.Missing)

			sess, err := store.Describe(ctx, "s1")
			require.NoError(t, err)
			assert.True(t, sess.HasReport)
		})
	}
}

func TestRedisSessionStore_Expires(t *testing.T) {
	ctx := context.Background()
	store, mr := setupRedisStore(t, time.Minute)

	first, err := store.MarkSaved(ctx, "s1", "octo", "SRE")
	require.NoError(t, err)
	require.True(t, first)
	assert.Equal(t, time.Minute, mr.TTL("session:s1:saved"))

	mr.FastForward(2 * time.Minute)

	first, err = store.MarkSaved(ctx, "s1", "octo", "SRE")
	require.NoError(t, err)
	assert.True(t, first)
}

func TestMemorySessionStore_Expires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store := &memorySessionStore{
		sessions: make(map[string]*memorySession),
		ttl:      time.Minute,
		now:      func() time.Time { return now },
	}

	require.NoError(t, store.PutReport(ctx, "s1", &models.AnalysisReport{ID: "r"}))
	now = now.Add(2 * time.Minute)

	_, err := store.GetReport(ctx, "s1")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestMemorySessionStore_SweepsExpiredSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store := &memorySessionStore{
		sessions:    make(map[string]*memorySession),
		ttl:         time.Minute,
		maxSessions: defaultMaxSessions,
		now:         func() time.Time { return now },
	}

	for i := 0; i < 1000; i++ {
		require.NoError(t, store.PutReport(ctx, fmt.Sprintf("old-%d", i), &models.AnalysisReport{ID: "r"}))
	}
	require.Len(t, store.sessions, 1000)

	now = now.Add(24 * time.Hour)
	for i := 0; i < 10; i++ {
		require.NoError(t, store.PutReport(ctx, fmt.Sprintf("new-%d", i), &models.AnalysisReport{ID: "r"}))
	}

	assert.Len(t, store.sessions, 10)
	_, err := store.GetReport(ctx, "new-9")
	assert.NoError(t, err)
}

func TestMemorySessionStore_EvictsWhenFull(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store := &memorySessionStore{
		sessions:    make(map[string]*memorySession),
		ttl:         time.Hour,
		maxSessions: 3,
		now:         func() time.Time { return now },
	}

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, store.PutReport(ctx, id, &models.AnalysisReport{ID: id}))
		now = now.Add(time.Second)
	}

	assert.Len(t, store.sessions, 3)
	_, err := store.GetReport(ctx, "a")
	assert.ErrorIs(t, err, ErrReportNotFound)
	report, err := store.GetReport(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, "d", report.ID)
}

func TestRedisSessionStore_Unavailable(t *testing.T) {
	store, mr := setupRedisStore(t, time.Minute)
	mr.Close()

	_, err := store.MarkSaved(context.Background(), "s1", "octo", "SRE")
	assert.Error(t, err)
}
