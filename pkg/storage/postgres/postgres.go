// Package postgres is the pgx backed log store.
//
// Expected schema:
//
//	CREATE TABLE access_logs (
//	    id BIGSERIAL PRIMARY KEY, timestamp TIMESTAMPTZ NOT NULL,
//	    ip_address TEXT NOT NULL, method TEXT NOT NULL, endpoint TEXT NOT NULL,
//	    http_version TEXT, status_code INT NOT NULL, response_size INT,
//	    response_time_ms DOUBLE PRECISION, user_agent TEXT, department TEXT, user_id TEXT
//	);
//	CREATE TABLE error_logs (
//	    id BIGSERIAL PRIMARY KEY, timestamp TIMESTAMPTZ NOT NULL,
//	    log_level TEXT NOT NULL, process_id INT, thread_id INT, client_ip TEXT,
//	    error_code TEXT NOT NULL, error_message TEXT NOT NULL, file_path TEXT,
//	    line_number INT, severity_score INT NOT NULL
//	);
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"loginsight/pkg/models"
	"loginsight/pkg/storage"
)

type Store struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, conStr string) (*Store, error) {
	db, err := pgxpool.Connect(ctx, conStr)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	s.db.Close()
	return nil
}

func (s *Store) AddAccessLog(ctx context.Context, e models.AccessLogEntry) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO access_logs (
			timestamp, ip_address, method, endpoint, http_version,
			status_code, response_size, response_time_ms, user_agent,
			department, user_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		e.Timestamp, e.IPAddress, e.Method, e.Endpoint, e.HTTPVersion,
		e.StatusCode, e.ResponseSize, e.ResponseTimeMs, e.UserAgent,
		e.Department, e.UserID,
	)
	return err
}

// AddAccessLogs inserts a batch of entries within a single transaction.
func (s *Store) AddAccessLogs(ctx context.Context, entries []models.AccessLogEntry) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := new(pgx.Batch)
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO access_logs (
				timestamp, ip_address, method, endpoint, http_version,
				status_code, response_size, response_time_ms, user_agent,
				department, user_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			e.Timestamp, e.IPAddress, e.Method, e.Endpoint, e.HTTPVersion,
			e.StatusCode, e.ResponseSize, e.ResponseTimeMs, e.UserAgent,
			e.Department, e.UserID,
		)
	}

	res := tx.SendBatch(ctx, batch)
	err = res.Close()
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) AddErrorLog(ctx context.Context, e models.ErrorLogEntry) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO error_logs (
			timestamp, log_level, process_id, thread_id, client_ip,
			error_code, error_message, file_path, line_number, severity_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		e.Timestamp, e.LogLevel, e.ProcessID, e.ThreadID, e.ClientIP,
		e.ErrorCode, e.ErrorMessage, e.FilePath, e.LineNumber, e.SeverityScore,
	)
	return err
}

func (s *Store) AddErrorLogs(ctx context.Context, entries []models.ErrorLogEntry) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := new(pgx.Batch)
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO error_logs (
				timestamp, log_level, process_id, thread_id, client_ip,
				error_code, error_message, file_path, line_number, severity_score
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			e.Timestamp, e.LogLevel, e.ProcessID, e.ThreadID, e.ClientIP,
			e.ErrorCode, e.ErrorMessage, e.FilePath, e.LineNumber, e.SeverityScore,
		)
	}

	res := tx.SendBatch(ctx, batch)
	err = res.Close()
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// AccessLogs returns access log records within the query window,
// newest first.
func (s *Store) AccessLogs(ctx context.Context, q storage.Query) ([]models.AccessLogEntry, error) {
	where, args := rangeClause(q)
	args = append(args, q.Cap())

	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		SELECT id, timestamp, ip_address, method, endpoint, http_version,
			status_code, response_size, response_time_ms, user_agent,
			department, user_id
		FROM access_logs
		%s
		ORDER BY timestamp DESC
		LIMIT $%d
	`, where, len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AccessLogEntry
	for rows.Next() {
		var e models.AccessLogEntry
		err := rows.Scan(
			&e.ID, &e.Timestamp, &e.IPAddress, &e.Method, &e.Endpoint,
			&e.HTTPVersion, &e.StatusCode, &e.ResponseSize, &e.ResponseTimeMs,
			&e.UserAgent, &e.Department, &e.UserID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan access log row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// ErrorLogs returns error log records within the query window,
// newest first.
func (s *Store) ErrorLogs(ctx context.Context, q storage.Query) ([]models.ErrorLogEntry, error) {
	where, args := rangeClause(q)
	args = append(args, q.Cap())

	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		SELECT id, timestamp, log_level, process_id, thread_id, client_ip,
			error_code, error_message, file_path, line_number, severity_score
		FROM error_logs
		%s
		ORDER BY timestamp DESC, severity_score DESC
		LIMIT $%d
	`, where, len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ErrorLogEntry
	for rows.Next() {
		var e models.ErrorLogEntry
		err := rows.Scan(
			&e.ID, &e.Timestamp, &e.LogLevel, &e.ProcessID, &e.ThreadID,
			&e.ClientIP, &e.ErrorCode, &e.ErrorMessage, &e.FilePath,
			&e.LineNumber, &e.SeverityScore,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan error log row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// rangeClause builds the WHERE clause for an open or closed time window.
func rangeClause(q storage.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if !q.From.IsZero() {
		args = append(args, q.From)
		conditions = append(conditions, fmt.Sprintf("timestamp >= $%d", len(args)))
	}
	if !q.To.IsZero() {
		args = append(args, q.To)
		conditions = append(conditions, fmt.Sprintf("timestamp <= $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}
