package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver registration.

	"product_feedback/internal/model"
	"product_feedback/migrations"
)

const timeLayout = time.RFC3339Nano

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db  *sql.DB
	now func() time.Time

	obs observers
}

// NewSQLite opens a SQLite database at dsn, runs pending migrations and
// inserts seed records that are not present yet.
func NewSQLite(ctx context.Context, dsn string, seed []model.Feedback) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &SQLite{db: db, now: time.Now}
	if err := s.seed(ctx, seed); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) seed(ctx context.Context, items []model.Feedback) error {
	for _, it := range items {
		if err := insertFeedback(ctx, s.db, `INSERT OR IGNORE`, it); err != nil {
			return fmt.Errorf("seed feedback %s: %w", it.ID, err)
		}
	}
	return nil
}

// AddFeedback inserts a new record with a fresh ID and creation time.
func (s *SQLite) AddFeedback(ctx context.Context, d model.Draft) (model.Feedback, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Feedback{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := s.now().UTC()
	var last sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT created_at FROM feedback ORDER BY seq DESC LIMIT 1`).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return model.Feedback{}, fmt.Errorf("query last created_at: %w", err)
	}
	if last.Valid {
		prev, err := time.Parse(timeLayout, last.String)
		if err != nil {
			return model.Feedback{}, fmt.Errorf("parse created_at: %w", err)
		}
		if createdAt.Before(prev) {
			createdAt = prev
		}
	}

	item := model.NewFeedback(uuid.New().String(), d, createdAt)
	if err := insertFeedback(ctx, tx, `INSERT`, item); err != nil {
		return model.Feedback{}, fmt.Errorf("insert feedback: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Feedback{}, fmt.Errorf("commit: %w", err)
	}

	s.obs.notify(item)
	return item, nil
}

// ListFeedback returns every record in insertion order.
func (s *SQLite) ListFeedback(ctx context.Context) ([]model.Feedback, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, brand, product_type, model, price_rating, design_rating,
		        quality_rating, overall_rating, comments, created_at
		 FROM feedback ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanFeedbackRows(rows)
}

// ListFeedbackByBrand returns records whose brand equals brand ignoring case.
// SQLite's NOCASE only folds ASCII, so the comparison happens here.
func (s *SQLite) ListFeedbackByBrand(ctx context.Context, brand string) ([]model.Feedback, error) {
	all, err := s.ListFeedback(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Feedback
	for _, it := range all {
		if strings.EqualFold(it.Brand, brand) {
			out = append(out, it)
		}
	}
	return out, nil
}

// Subscribe registers fn to run after each committed insert.
func (s *SQLite) Subscribe(fn func(model.Feedback)) func() {
	return s.obs.subscribe(fn)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertFeedback(ctx context.Context, db execer, verb string, f model.Feedback) error {
	_, err := db.ExecContext(ctx,
		verb+` INTO feedback (id, brand, product_type, model, price_rating, design_rating,
		                      quality_rating, overall_rating, comments, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Brand, f.ProductType, f.Model, f.PriceRating, f.DesignRating,
		f.QualityRating, f.OverallRating, f.Comments, f.CreatedAt.UTC().Format(timeLayout),
	)
	return err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanFeedback(row scannable) (model.Feedback, error) {
	var f model.Feedback
	var created string
	err := row.Scan(&f.ID, &f.Brand, &f.ProductType, &f.Model, &f.PriceRating, &f.DesignRating,
		&f.QualityRating, &f.OverallRating, &f.Comments, &created)
	if err != nil {
		return f, fmt.Errorf("scan feedback: %w", err)
	}
	f.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return f, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	return f, nil
}

func scanFeedbackRows(rows *sql.Rows) ([]model.Feedback, error) {
	var items []model.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}
