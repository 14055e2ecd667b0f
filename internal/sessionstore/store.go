// Package sessionstore keeps the current summary of each user session.
// Every successful summarization replaces the session's result as a whole.
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/Theomnitron/SummaRead/internal/pipeline"
	"github.com/google/uuid"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// DefaultTTL is how long an idle session keeps its result.
const DefaultTTL = 24 * time.Hour

const maxSessionIDLength = 128

var (
	// ErrSessionNotFound is returned when a session has no current result.
	ErrSessionNotFound = errors.New("session has no summary")
	// ErrInvalidSessionID is returned for empty or oversized session IDs.
	ErrInvalidSessionID = errors.New("invalid session id")
	// ErrStoreClosed is returned by a store used after Close.
	ErrStoreClosed = errors.New("store closed")
)

// Record is the stored state of one session.
type Record struct {
	SessionID    string                  `json:"session_id"`
	ResultID     string                  `json:"result_id"`
	DocumentHash string                  `json:"document_hash"`
	Result       *pipeline.SummaryResult `json:"result"`
	UpdatedAt    time.Time               `json:"updated_at"`
	ExpiresAt    time.Time               `json:"expires_at"`
}

// Store holds one current Record per session.
type Store interface {
	// Put replaces the session's current record.
	Put(ctx context.Context, rec *Record) error

	// Get returns the session's current record or a not-found error.
	Get(ctx context.Context, sessionID string) (*Record, error)

	// Delete drops the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// PurgeExpired removes expired sessions and reports how many were removed.
	PurgeExpired(ctx context.Context) (int, error)

	// Close releases the store's resources.
	Close() error
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// NewRecord stamps a result for storage under sessionID.
func NewRecord(sessionID, documentHash string, result *pipeline.SummaryResult, ttl time.Duration) *Record {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now().UTC()
	return &Record{
		SessionID:    sessionID,
		ResultID:     uuid.NewString(),
		DocumentHash: documentHash,
		Result:       result.Clone(),
		UpdatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
}

// ValidateSessionID rejects IDs no store can key on.
func ValidateSessionID(id string) error {
	if id == "" || len(id) > maxSessionIDLength {
		return errortypes.InputError(ErrInvalidSessionID, "invalid session").WithField("session_id_length", len(id))
	}
	return nil
}

func notFound(sessionID string) error {
	return errortypes.NotFoundError(ErrSessionNotFound, "no summary for session").WithField("session_id", sessionID)
}

// Options selects and configures a store.
type Options struct {
	Driver        string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// Open creates the store named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		s := NewSQLiteStore()
		if err := s.Initialize(opts.SQLitePath); err != nil {
			return nil, err
		}
		return s, nil
	case DriverRedis:
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	default:
		return nil, errortypes.ConfigError(fmt.Errorf("unknown store driver %q", opts.Driver), "invalid store configuration")
	}
}
