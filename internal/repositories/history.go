package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/myrjola/cropdoc/internal/db"
	"github.com/myrjola/cropdoc/internal/errors"
	"github.com/myrjola/cropdoc/internal/models"
)

// HistoryLimit caps how many diagnoses are kept per scope. Appending beyond the
// limit evicts the oldest entries.
const HistoryLimit = 20

var ErrPersistence = errors.NewSentinel("history persistence failed")

// HistoryRepository persists completed diagnoses. It is best-effort caching, not a
// source of truth: a failed write is reported for logging but callers keep their
// in-memory view, and a corrupt store loads as an empty collection.
type HistoryRepository struct {
	dbs    *db.Database
	logger *slog.Logger
}

func NewHistoryRepository(dbs *db.Database, logger *slog.Logger) *HistoryRepository {
	return &HistoryRepository{
		dbs:    dbs,
		logger: logger.With("source", "HistoryRepository"),
	}
}

// Load returns the persisted history for the scope, newest first, capped to
// HistoryLimit. It fails soft: read or deserialization failures are logged and
// yield an empty collection, never an error.
func (r *HistoryRepository) Load(ctx context.Context, scope string) []models.HistoryEntry {
	stmt := `SELECT id, created_at, image, result
	FROM history_entries
	WHERE scope = ?
	ORDER BY created_at DESC, rowid DESC
	LIMIT ?`
	rows, err := r.dbs.ReadOnly.QueryContext(ctx, stmt, scope, HistoryLimit)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "could not load history",
			errors.SlogError(errors.Wrap(err, "query history")))
		return []models.HistoryEntry{}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "could not close rows",
				errors.SlogError(errors.Wrap(err, "close rows")))
		}
	}()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var (
			entry      models.HistoryEntry
			createdAt  int64
			resultJSON string
		)
		if err = rows.Scan(&entry.ID, &createdAt, &entry.Image, &resultJSON); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "corrupt history entry, resetting to empty",
				errors.SlogError(errors.Wrap(err, "scan history entry")))
			return []models.HistoryEntry{}
		}
		if err = json.Unmarshal([]byte(resultJSON), &entry.Result); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "corrupt history entry, resetting to empty",
				errors.SlogError(errors.Wrap(err, "unmarshal result", slog.String("id", entry.ID))))
			return []models.HistoryEntry{}
		}
		if err = entry.Result.Validate(); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "corrupt history entry, resetting to empty",
				errors.SlogError(err))
			return []models.HistoryEntry{}
		}
		entry.Timestamp = time.UnixMilli(createdAt)
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "could not load history",
			errors.SlogError(errors.Wrap(err, "rows error")))
		return []models.HistoryEntry{}
	}

	return entries
}

// Append inserts the entry and truncates the scope down to HistoryLimit entries,
// evicting the oldest, in a single transaction.
func (r *HistoryRepository) Append(ctx context.Context, scope string, entry models.HistoryEntry) error {
	resultJSON, err := json.Marshal(entry.Result)
	if err != nil {
		return errors.Wrap(errors.Join(ErrPersistence, err), "marshal result", slog.String("id", entry.ID))
	}

	var tx *sql.Tx
	if tx, err = r.dbs.ReadWrite.BeginTx(ctx, nil); err != nil {
		return errors.Wrap(errors.Join(ErrPersistence, err), "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt := `INSERT INTO history_entries (id, scope, created_at, image, result)
	VALUES (@id, @scope, @created_at, @image, @result)`
	params := []any{
		sql.Named("id", entry.ID),
		sql.Named("scope", scope),
		sql.Named("created_at", entry.Timestamp.UnixMilli()),
		sql.Named("image", entry.Image),
		sql.Named("result", string(resultJSON)),
	}
	if _, err = tx.ExecContext(ctx, stmt, params...); err != nil {
		return errors.Wrap(errors.Join(ErrPersistence, err), "insert history entry", slog.String("id", entry.ID))
	}

	stmt = `DELETE FROM history_entries
	WHERE scope = @scope
	  AND id NOT IN (SELECT id
					 FROM history_entries
					 WHERE scope = @scope
					 ORDER BY created_at DESC, rowid DESC
					 LIMIT @limit)`
	params = []any{
		sql.Named("scope", scope),
		sql.Named("limit", HistoryLimit),
	}
	if _, err = tx.ExecContext(ctx, stmt, params...); err != nil {
		return errors.Wrap(errors.Join(ErrPersistence, err), "truncate history")
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(errors.Join(ErrPersistence, err), "commit transaction")
	}
	return nil
}

// Clear removes every persisted entry for the scope.
func (r *HistoryRepository) Clear(ctx context.Context, scope string) error {
	stmt := `DELETE FROM history_entries WHERE scope = ?`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, scope); err != nil {
		return errors.Wrap(errors.Join(ErrPersistence, err), "clear history")
	}
	return nil
}
