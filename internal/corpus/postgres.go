// internal/corpus/postgres.go
package corpus

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	apperrors "gematria-workers/internal/common/errors"
	"gematria-workers/internal/gematria"
	"gematria-workers/internal/matcher"
)

// PostgresRepository stores corpus entries one row per word, with a
// column per numeral system. Rows load in insertion order.
type PostgresRepository struct {
	db    *sql.DB
	table string
}

func NewPostgresRepository(db *sql.DB, table string) *PostgresRepository {
	return &PostgresRepository{db: db, table: pq.QuoteIdentifier(table)}
}

func (r *PostgresRepository) Name() string { return "postgres" }

// EnsureSchema creates the words table when it does not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	word TEXT NOT NULL UNIQUE,
	english INTEGER NOT NULL,
	reduced INTEGER NOT NULL,
	reverse INTEGER NOT NULL,
	jewish INTEGER NOT NULL,
	simple INTEGER NOT NULL,
	satanic INTEGER NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, r.table)

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return apperrors.NewQueryExecutionFailedError("create table", err)
	}
	return nil
}

func (r *PostgresRepository) Load(ctx context.Context) ([]matcher.CorpusEntry, error) {
	query := fmt.Sprintf(
		"SELECT word, english, reduced, reverse, jewish, simple, satanic FROM %s ORDER BY id",
		r.table,
	)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(query, err)
	}
	defer rows.Close()

	var entries []matcher.CorpusEntry
	for rows.Next() {
		var (
			word string
			vals [6]int
		)
		if err := rows.Scan(&word, &vals[0], &vals[1], &vals[2], &vals[3], &vals[4], &vals[5]); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError(query, err)
		}
		entries = append(entries, matcher.CorpusEntry{
			Token: word,
			Values: gematria.ValueVector{
				gematria.Ordinal:           vals[0],
				gematria.Reduced:           vals[1],
				gematria.ReverseOrdinal:    vals[2],
				gematria.ClassicalWeighted: vals[3],
				gematria.Simple:            vals[4],
				gematria.OffsetWeighted:    vals[5],
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(query, err)
	}

	return normalize(entries), nil
}

// Upsert writes entries in one transaction, replacing the values of words
// already present. It returns the number of rows written.
func (r *PostgresRepository) Upsert(ctx context.Context, entries []matcher.CorpusEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.NewCorpusWriteFailedError(r.Name(), err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (word, english, reduced, reverse, jewish, simple, satanic)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (word) DO UPDATE SET
	english = EXCLUDED.english,
	reduced = EXCLUDED.reduced,
	reverse = EXCLUDED.reverse,
	jewish = EXCLUDED.jewish,
	simple = EXCLUDED.simple,
	satanic = EXCLUDED.satanic,
	updated_at = NOW()`, r.table))
	if err != nil {
		return 0, apperrors.NewCorpusWriteFailedError(r.Name(), err)
	}
	defer stmt.Close()

	for _, e := range entries {
		v := e.Values
		if !v.Covers(gematria.AllSystems) {
			v = gematria.ComputeAll(e.Token)
		}
		if _, err := stmt.ExecContext(ctx, e.Token,
			v[gematria.Ordinal], v[gematria.Reduced], v[gematria.ReverseOrdinal],
			v[gematria.ClassicalWeighted], v[gematria.Simple], v[gematria.OffsetWeighted],
		); err != nil {
			return 0, apperrors.NewCorpusWriteFailedError(r.Name(), fmt.Errorf("word %q: %w", e.Token, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.NewCorpusWriteFailedError(r.Name(), err)
	}
	return len(entries), nil
}
