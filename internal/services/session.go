package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-analyzer/internal/config"
	"resume-analyzer/internal/models"
)

var ErrReportNotFound = errors.New("no report for this session")

// SessionStore tracks which snapshots a client session already saved and
// keeps its most recent report.
type SessionStore interface {
	MarkSaved(ctx context.Context, sessionID, username, role string) (bool, error)
	PutReport(ctx context.Context, sessionID string, report *models.AnalysisReport) error
	GetReport(ctx context.Context, sessionID string) (*models.AnalysisReport, error)
	Describe(ctx context.Context, sessionID string) (*models.AnalysisSession, error)
}

func savedKey(username, role string) string {
	return strings.ToLower(strings.TrimSpace(username)) + "|" + strings.TrimSpace(role)
}

// NewRedisClient builds the pooled client behind the session store.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	return &redisSessionStore{client: client, ttl: ttl}
}

func (s *redisSessionStore) savedSetKey(id string) string { return "session:" + id + ":saved" }
func (s *redisSessionStore) reportKey(id string) string   { return "session:" + id + ":report" }

func (s *redisSessionStore) MarkSaved(ctx context.Context, sessionID, username, role string) (bool, error) {
	key := s.savedSetKey(sessionID)

	var added *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		added = pipe.SAdd(ctx, key, savedKey(username, role))
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to mark session save: %w", err)
	}
	return added.Val() == 1, nil
}

func (s *redisSessionStore) PutReport(ctx context.Context, sessionID string, report *models.AnalysisReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := s.client.Set(ctx, s.reportKey(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}
	return nil
}

func (s *redisSessionStore) GetReport(ctx context.Context, sessionID string) (*models.AnalysisReport, error) {
	raw, err := s.client.Get(ctx, s.reportKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var report models.AnalysisReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}

func (s *redisSessionStore) Describe(ctx context.Context, sessionID string) (*models.AnalysisSession, error) {
	keys, err := s.client.SMembers(ctx, s.savedSetKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	n, err := s.client.Exists(ctx, s.reportKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if keys == nil {
		keys = []string{}
	}
	sort.Strings(keys)
	return &models.AnalysisSession{ID: sessionID, SavedKeys: keys, HasReport: n > 0}, nil
}

type memorySession struct {
	saved   map[string]struct{}
	report  *models.AnalysisReport
	expires time.Time
}

const (
	defaultMaxSessions = 10000
	sessionSweepEvery  = time.Minute
)

type memorySessionStore struct {
	mu          sync.Mutex
	sessions    map[string]*memorySession
	ttl         time.Duration
	maxSessions int
	lastSweep   time.Time
	now         func() time.Time
}

// NewMemorySessionStore is used when no Redis address is configured.
// Expired sessions are swept at most once a minute and the store holds at
// most defaultMaxSessions entries, evicting the one closest to expiry.
func NewMemorySessionStore(ttl time.Duration) SessionStore {
	return &memorySessionStore{
		sessions:    make(map[string]*memorySession),
		ttl:         ttl,
		maxSessions: defaultMaxSessions,
		now:         time.Now,
	}
}

func (s *memorySessionStore) expired(sess *memorySession, now time.Time) bool {
	return s.ttl > 0 && now.After(sess.expires)
}

// session returns the live entry for id, creating it if needed. Callers hold mu.
func (s *memorySessionStore) session(id string, create bool) *memorySession {
	now := s.now()
	sess, ok := s.sessions[id]
	if ok && s.expired(sess, now) {
		delete(s.sessions, id)
		ok = false
	}
	if !ok {
		if !create {
			return nil
		}
		s.makeRoom(now)
		sess = &memorySession{saved: make(map[string]struct{})}
		s.sessions[id] = sess
	}
	sess.expires = now.Add(s.ttl)
	return sess
}

// makeRoom drops expired sessions and, when still full, the one that
// expires first. Callers hold mu.
func (s *memorySessionStore) makeRoom(now time.Time) {
	if now.Sub(s.lastSweep) >= sessionSweepEvery || len(s.sessions) >= s.maxSessions {
		for id, sess := range s.sessions {
			if s.expired(sess, now) {
				delete(s.sessions, id)
			}
		}
		s.lastSweep = now
	}

	for s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		var oldestID string
		var oldest time.Time
		for id, sess := range s.sessions {
			if oldestID == "" || sess.expires.Before(oldest) {
				oldestID, oldest = id, sess.expires
			}
		}
		delete(s.sessions, oldestID)
	}
}

func (s *memorySessionStore) MarkSaved(_ context.Context, sessionID, username, role string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID, true)
	key := savedKey(username, role)
	if _, dup := sess.saved[key]; dup {
		return false, nil
	}
	sess.saved[key] = struct{}{}
	return true, nil
}

func (s *memorySessionStore) PutReport(_ context.Context, sessionID string, report *models.AnalysisReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session(sessionID, true).report = report
	return nil
}

func (s *memorySessionStore) GetReport(_ context.Context, sessionID string) (*models.AnalysisReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(sessionID, false)
	if sess == nil || sess.report == nil {
		return nil, ErrReportNotFound
	}
	return sess.report, nil
}

func (s *memorySessionStore) Describe(_ context.Context, sessionID string) (*models.AnalysisSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &models.AnalysisSession{ID: sessionID, SavedKeys: []string{}}
	sess := s.session(sessionID, false)
	if sess == nil {
		return out, nil
	}
	for k := range sess.saved {
		out.SavedKeys = append(out.SavedKeys, k)
	}
	sort.Strings(out.SavedKeys)
	out.HasReport = sess.report != nil
	return out, nil
}
