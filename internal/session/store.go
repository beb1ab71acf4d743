// Package session keeps per-session caption state in Redis so a caption is
// not regenerated for the same image and strategy within one session.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"price-finder/internal/common/database"
	"price-finder/internal/common/errors"
	"price-finder/internal/common/logger"
	"price-finder/internal/common/metrics"
	"price-finder/internal/models"
)

const (
	DefaultTTL       = 30 * time.Minute
	DefaultKeyPrefix = "pricefinder:session:"
)

// State is what one session remembers about its last resolution.
type State struct {
	SessionID   string               `json:"sessionId"`
	Strategy    string               `json:"strategy"`
	ImageDigest string               `json:"imageDigest"`
	Caption     string               `json:"caption"`
	Source      models.CaptionSource `json:"source,omitempty"`
	Query       string               `json:"query,omitempty"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

type Config struct {
	TTL       time.Duration
	KeyPrefix string
}

type Store struct {
	redis  *database.RedisClient
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

func NewStore(redis *database.RedisClient, cfg Config, log logger.Logger) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	return &Store{
		redis:  redis,
		ttl:    cfg.TTL,
		prefix: cfg.KeyPrefix,
		logger: log.With(map[string]interface{}{"component": "session-store"}),
	}
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

// Digest identifies an image by content.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

// Get returns the stored state, or nil when the session has none.
func (s *Store) Get(ctx context.Context, sessionID string) (*State, error) {
	raw, err := s.redis.Get(ctx, s.key(sessionID))
	if stderrors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewSessionStoreError("get", err)
	}

	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		s.logger.Warn("discarding unreadable session state", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		return nil, nil
	}
	return &st, nil
}

// CaptionResult returns the stored caption.
func (st *State) CaptionResult() models.Caption {
	return models.Caption{Text: st.Caption, Source: st.Source}
}

// Lookup returns the stored state only for the same strategy and image,
// and only when its caption is non-empty.
func (s *Store) Lookup(ctx context.Context, sessionID, strategy, digest string) (*State, bool, error) {
	st, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}

	if st == nil || st.Strategy != strategy || st.ImageDigest != digest || !st.CaptionResult().Available() {
		metrics.SessionCacheLookups.WithLabelValues("miss").Inc()
		return nil, false, nil
	}

	metrics.SessionCacheLookups.WithLabelValues("hit").Inc()
	return st, true, nil
}

// Save records a resolution and refreshes the TTL. A previously saved query
// is kept when st.Query is empty and the strategy and image are unchanged.
func (s *Store) Save(ctx context.Context, st *State) error {
	if st.Query == "" {
		prev, err := s.Get(ctx, st.SessionID)
		if err != nil {
			return err
		}
		if prev != nil && prev.Strategy == st.Strategy && prev.ImageDigest == st.ImageDigest {
			st.Query = prev.Query
		}
	}
	return s.put(ctx, st)
}

// SaveQuery records the refined query for a session.
func (s *Store) SaveQuery(ctx context.Context, sessionID, query string) error {
	st, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if st == nil {
		st = &State{SessionID: sessionID}
	}
	st.Query = query
	return s.put(ctx, st)
}

func (s *Store) put(ctx context.Context, st *State) error {
	st.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(st)
	if err != nil {
		return errors.NewSessionStoreError("encode", err)
	}
	if err := s.redis.Set(ctx, s.key(st.SessionID), data, s.ttl); err != nil {
		return errors.NewSessionStoreError("set", err)
	}
	return nil
}
