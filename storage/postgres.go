package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doSwayamCode/chitrakaar/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	MAX_GUEST_SCORE   = 9999
	GALLERY_RETENTION = 7 * 24 * time.Hour
	SCORES_RETENTION  = 30 * 24 * time.Hour
	MAX_SAVED_STROKES = 1000
)

type PostgresRepo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return &PostgresRepo{pool: pool, now: time.Now}, nil
}

func (pgr *PostgresRepo) Close() {
	pgr.pool.Close()
}

func wrapErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
}

func capStrokes(strokes []domain.Stroke) []domain.Stroke {
	if len(strokes) > MAX_SAVED_STROKES {
		return strokes[len(strokes)-MAX_SAVED_STROKES:]
	}
	return strokes
}

func clampScore(score int) int {
	return min(max(score, 0), MAX_GUEST_SCORE)
}

func (pgr *PostgresRepo) SaveDrawing(ctx context.Context, drawing domain.Drawing) error {
	strokes, err := json.Marshal(capStrokes(drawing.Strokes))
	if err != nil {
		return err
	}
	createdAt := drawing.CreatedAt
	if createdAt.IsZero() {
		createdAt = pgr.now()
	}

	_, err = pgr.pool.Exec(ctx,
		"INSERT INTO drawings(word, drawer_name, strokes, created_at) VALUES($1, $2, $3, $4)",
		drawing.Word, drawing.DrawerName, strokes, createdAt,
	)
	if err != nil {
		return wrapErr(err)
	}
	return nil
}

// RecentDrawings returns the newest drawings of the last week.
func (pgr *PostgresRepo) RecentDrawings(ctx context.Context, limit int) ([]domain.Drawing, error) {
	rows, err := pgr.pool.Query(ctx,
		"SELECT word, drawer_name, strokes, created_at FROM drawings WHERE created_at > $1 ORDER BY created_at DESC LIMIT $2",
		pgr.now().Add(-GALLERY_RETENTION), limit,
	)
	if err != nil {
		return nil, wrapErr(err)
	}

	drawings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Drawing, error) {
		var d domain.Drawing
		var strokes []byte
		if err := row.Scan(&d.Word, &d.DrawerName, &strokes, &d.CreatedAt); err != nil {
			return d, err
		}
		return d, json.Unmarshal(strokes, &d.Strokes)
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return drawings, nil
}

func (pgr *PostgresRepo) SaveGuestScore(ctx context.Context, entry domain.ScoreEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = pgr.now()
	}
	mode := entry.Mode
	if mode == "" {
		mode = "classic"
	}

	_, err := pgr.pool.Exec(ctx,
		"INSERT INTO guest_scores(display_name, score, mode, created_at) VALUES($1, $2, $3, $4)",
		entry.DisplayName, clampScore(entry.Score), mode, createdAt,
	)
	if err != nil {
		return wrapErr(err)
	}
	return nil
}

// TopScores returns the best scores recorded in the last 30 days.
func (pgr *PostgresRepo) TopScores(ctx context.Context, limit int) ([]domain.ScoreEntry, error) {
	rows, err := pgr.pool.Query(ctx,
		"SELECT display_name, score, mode, created_at FROM guest_scores WHERE created_at > $1 ORDER BY score DESC, created_at ASC LIMIT $2",
		pgr.now().Add(-SCORES_RETENTION), limit,
	)
	if err != nil {
		return nil, wrapErr(err)
	}

	entries, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.ScoreEntry])
	if err != nil {
		return nil, wrapErr(err)
	}
	return entries, nil
}
