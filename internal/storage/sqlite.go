// internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"food-tracker/internal/models"
	"food-tracker/internal/storage/migrations"
)

// ErrNotFound is returned when no entry has the requested ID.
var ErrNotFound = errors.New("food log not found")

const entryColumns = `id, owner, name, description, meal_category, date, calories, nutrition_detail, created_at, updated_at`

type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens path (a file or ":memory:") and migrates it to the
// latest schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// NewSQLiteStorageFromDB wraps an existing connection without migrating it.
func NewSQLiteStorageFromDB(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

// OpenConnection opens a SQLite database limited to one connection, so an
// in-memory database is shared by every query.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}
	return db, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// CheckMigrations reports whether the schema is current.
func (s *SQLiteStorage) CheckMigrations() error {
	return migrations.CheckStatus(s.db)
}

func (s *SQLiteStorage) Create(ctx context.Context, entry *models.FoodLogEntry) error {
	return insertEntry(ctx, s.db, entry)
}

func (s *SQLiteStorage) Get(ctx context.Context, id string) (*models.FoodLogEntry, error) {
	return getEntry(ctx, s.db, id)
}

// Modify loads the entry, lets fn change it and writes it back inside one
// transaction. An error from fn aborts without writing.
func (s *SQLiteStorage) Modify(ctx context.Context, id string, fn func(*models.FoodLogEntry) error) (*models.FoodLogEntry, error) {
	var updated *models.FoodLogEntry
	err := WithTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		entry, err := getEntry(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(entry); err != nil {
			return err
		}
		if err := updateEntry(ctx, tx, entry); err != nil {
			return err
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *SQLiteStorage) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM food_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete food log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns entries matching filter, newest date first.
func (s *SQLiteStorage) List(ctx context.Context, filter models.LogFilter) ([]*models.FoodLogEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM food_logs WHERE 1=1`
	args := []any{}

	if filter.Owner != "" {
		query += " AND owner = ?"
		args = append(args, filter.Owner)
	}
	if filter.StartDate != nil {
		query += " AND date >= ?"
		args = append(args, filter.StartDate.Format(models.DateLayout))
	}
	if filter.EndDate != nil {
		query += " AND date <= ?"
		args = append(args, filter.EndDate.Format(models.DateLayout))
	}
	if filter.MealCategory != "" {
		query += " AND meal_category = ?"
		args = append(args, string(filter.MealCategory))
	}

	query += " ORDER BY date DESC, created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query food logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.FoodLogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read food logs: %w", err)
	}
	return entries, nil
}

func insertEntry(ctx context.Context, db DBTX, entry *models.FoodLogEntry) error {
	detail, err := encodeDetail(entry.NutritionDetail)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        INSERT INTO food_logs (`+entryColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, nullString(entry.Owner), entry.Name, entry.Description,
		string(entry.MealCategory), entry.Date.Format(models.DateLayout), entry.Calories,
		detail, formatTimestamp(entry.CreatedAt), formatTimestamp(entry.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert food log: %w", err)
	}
	return nil
}

func updateEntry(ctx context.Context, db DBTX, entry *models.FoodLogEntry) error {
	detail, err := encodeDetail(entry.NutritionDetail)
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `
        UPDATE food_logs
        SET owner = ?, name = ?, description = ?, meal_category = ?, date = ?,
            calories = ?, nutrition_detail = ?, updated_at = ?
        WHERE id = ?`,
		nullString(entry.Owner), entry.Name, entry.Description, string(entry.MealCategory),
		entry.Date.Format(models.DateLayout), entry.Calories, detail,
		formatTimestamp(entry.UpdatedAt), entry.ID)
	if err != nil {
		return fmt.Errorf("failed to update food log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func getEntry(ctx context.Context, db DBTX, id string) (*models.FoodLogEntry, error) {
	row := db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM food_logs WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.FoodLogEntry, error) {
	entry := &models.FoodLogEntry{}
	var owner, detail sql.NullString
	var category, dateStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&entry.ID, &owner, &entry.Name, &entry.Description, &category,
		&dateStr, &entry.Calories, &detail, &createdAtStr, &updatedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan food log: %w", err)
	}

	entry.Owner = owner.String
	entry.MealCategory = models.MealCategory(category)

	if entry.Date, err = time.Parse(models.DateLayout, dateStr); err != nil {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}
	if entry.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if entry.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	if detail.Valid {
		var totals models.NutrientTotals
		if err := json.Unmarshal([]byte(detail.String), &totals); err != nil {
			return nil, fmt.Errorf("failed to decode nutrition detail for %s: %w", entry.ID, err)
		}
		entry.NutritionDetail = &totals
	}
	return entry, nil
}

func encodeDetail(detail *models.NutrientTotals) (sql.NullString, error) {
	if detail == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(detail)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode nutrition detail: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
