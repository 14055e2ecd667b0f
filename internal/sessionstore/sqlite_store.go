package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"crawshaw.io/sqlite"
	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/Theomnitron/SummaRead/internal/pipeline"
)

// SQLiteStore keeps sessions in a single SQLite file.
type SQLiteStore struct {
	mu     sync.Mutex
	conn   *sqlite.Conn
	dbPath string
	now    func() time.Time
}

// NewSQLiteStore creates an uninitialized store; call Initialize before use.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{now: time.Now}
}

// Initialize opens (creating if needed) the database at dbPath.
func (s *SQLiteStore) Initialize(dbPath string) error {
	s.dbPath = dbPath

	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return errortypes.DatabaseError(err, "failed to open SQLite database").WithField("path", dbPath)
	}
	s.conn = conn

	if err := s.exec(`
	CREATE TABLE IF NOT EXISTS session_summaries (
		session_id    TEXT PRIMARY KEY,
		result_id     TEXT NOT NULL,
		document_hash TEXT NOT NULL,
		result_json   TEXT NOT NULL,
		updated_at    INTEGER NOT NULL,
		expires_at    INTEGER NOT NULL
	);`); err != nil {
		s.closeConn()
		return errortypes.DatabaseError(err, "failed to create table")
	}
	if err := s.exec(`CREATE INDEX IF NOT EXISTS idx_session_summaries_expires ON session_summaries (expires_at);`); err != nil {
		s.closeConn()
		return errortypes.DatabaseError(err, "failed to create index")
	}
	return nil
}

func (s *SQLiteStore) exec(query string) error {
	stmt, err := s.conn.Prepare(query)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Reset()

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("step: %w", err)
	}
	return nil
}

// Close closes the database. Later calls on the store fail with
// ErrStoreClosed.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeConn()
}

func (s *SQLiteStore) closeConn() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// prepare must be called with s.mu held.
func (s *SQLiteStore) prepare(query, what string) (*sqlite.Stmt, error) {
	if s.conn == nil {
		return nil, errortypes.DatabaseError(ErrStoreClosed, "store closed")
	}
	stmt, err := s.conn.Prepare(query)
	if err != nil {
		return nil, errortypes.DatabaseError(err, "failed to prepare "+what+" statement")
	}
	return stmt, nil
}

// Put replaces the session's row.
func (s *SQLiteStore) Put(_ context.Context, rec *Record) error {
	if err := ValidateSessionID(rec.SessionID); err != nil {
		return err
	}
	payload, err := json.Marshal(rec.Result)
	if err != nil {
		return errortypes.InternalError(err, "failed to encode summary")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.prepare(`
	INSERT OR REPLACE INTO session_summaries
		(session_id, result_id, document_hash, result_json, updated_at, expires_at)
	VALUES (?, ?, ?, ?, ?, ?);`, "insert")
	if err != nil {
		return err
	}
	defer stmt.Reset()

	stmt.BindText(1, rec.SessionID)
	stmt.BindText(2, rec.ResultID)
	stmt.BindText(3, rec.DocumentHash)
	stmt.BindText(4, string(payload))
	stmt.BindInt64(5, rec.UpdatedAt.UnixNano())
	stmt.BindInt64(6, rec.ExpiresAt.UnixNano())

	if _, err := stmt.Step(); err != nil {
		return errortypes.DatabaseError(err, "failed to store session").WithField("session_id", rec.SessionID)
	}
	return nil
}

// Get returns the session's row unless it is missing or expired.
func (s *SQLiteStore) Get(_ context.Context, sessionID string) (*Record, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.prepare(`
	SELECT result_id, document_hash, result_json, updated_at, expires_at
	FROM session_summaries WHERE session_id = ? AND expires_at > ?;`, "select")
	if err != nil {
		return nil, err
	}
	defer stmt.Reset()

	stmt.BindText(1, sessionID)
	stmt.BindInt64(2, s.now().UnixNano())

	hasRow, err := stmt.Step()
	if err != nil {
		return nil, errortypes.DatabaseError(err, "failed to read session").WithField("session_id", sessionID)
	}
	if !hasRow {
		return nil, notFound(sessionID)
	}

	var result pipeline.SummaryResult
	if err := json.Unmarshal([]byte(stmt.ColumnText(2)), &result); err != nil {
		return nil, errortypes.DatabaseError(err, "corrupt session row").WithField("session_id", sessionID)
	}

	return &Record{
		SessionID:    sessionID,
		ResultID:     stmt.ColumnText(0),
		DocumentHash: stmt.ColumnText(1),
		Result:       &result,
		UpdatedAt:    time.Unix(0, stmt.ColumnInt64(3)).UTC(),
		ExpiresAt:    time.Unix(0, stmt.ColumnInt64(4)).UTC(),
	}, nil
}

// Delete removes the session's row.
func (s *SQLiteStore) Delete(_ context.Context, sessionID string) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.prepare(`DELETE FROM session_summaries WHERE session_id = ?;`, "delete")
	if err != nil {
		return err
	}
	defer stmt.Reset()

	stmt.BindText(1, sessionID)
	if _, err := stmt.Step(); err != nil {
		return errortypes.DatabaseError(err, "failed to delete session").WithField("session_id", sessionID)
	}
	return nil
}

// PurgeExpired deletes every expired row.
func (s *SQLiteStore) PurgeExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.prepare(`DELETE FROM session_summaries WHERE expires_at <= ?;`, "purge")
	if err != nil {
		return 0, err
	}
	defer stmt.Reset()

	stmt.BindInt64(1, s.now().UnixNano())
	if _, err := stmt.Step(); err != nil {
		return 0, errortypes.DatabaseError(err, "failed to purge sessions")
	}
	return s.conn.Changes(), nil
}
