// Package store handles SQLite persistence of the three dataset tables.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/injurydash/internal/dataset"
	"github.com/verte-zerg/injurydash/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const dateLayout = "2006-01-02"

// Store wraps SQLite access for the injury, product, and population tables.
type Store struct {
	db *sql.DB
}

// Counts holds the row count of each table.
type Counts struct {
	Injuries   int
	Products   int
	Population int
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS injuries (
			id INTEGER PRIMARY KEY,
			trmt_date TEXT NOT NULL,
			age INTEGER NOT NULL,
			sex TEXT NOT NULL,
			race TEXT NOT NULL,
			body_part TEXT NOT NULL,
			diag TEXT NOT NULL,
			location TEXT NOT NULL,
			prod_code INTEGER NOT NULL,
			weight REAL NOT NULL,
			narrative TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY,
			prod_code INTEGER NOT NULL UNIQUE,
			title TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS population (
			age INTEGER NOT NULL,
			sex TEXT NOT NULL,
			population INTEGER NOT NULL,
			PRIMARY KEY (age, sex)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_injuries_prod_code ON injuries(prod_code);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Import replaces the contents of all three tables with the given dataset in
// a single transaction.
func (s *Store) Import(ctx context.Context, ds *dataset.Store) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	for _, table := range []string{"injuries", "products", "population"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	err = insertAll(ctx, tx,
		`INSERT INTO injuries (trmt_date, age, sex, race, body_part, diag, location, prod_code, weight, narrative)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ds.Injuries(), func(r model.InjuryRecord) []any {
			return []any{r.TreatmentDate.Format(dateLayout), r.Age, string(r.Sex), r.Race, r.BodyPart, r.Diagnosis, r.Location, r.ProductCode, r.Weight, r.Narrative}
		})
	if err != nil {
		return fmt.Errorf("failed to insert injuries: %w", err)
	}
	err = insertAll(ctx, tx, `INSERT INTO products (prod_code, title) VALUES (?, ?)`,
		ds.Products(), func(p model.ProductEntry) []any {
			return []any{p.Code, p.Title}
		})
	if err != nil {
		return fmt.Errorf("failed to insert products: %w", err)
	}
	err = insertAll(ctx, tx, `INSERT INTO population (age, sex, population) VALUES (?, ?, ?)`,
		ds.Population(), func(p model.PopulationEntry) []any {
			return []any{p.Age, string(p.Sex), p.Population}
		})
	if err != nil {
		return fmt.Errorf("failed to insert population: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

func insertAll[T any](ctx context.Context, tx *sql.Tx, query string, rows []T, args func(T) []any) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, args(row)...); err != nil {
			return err
		}
	}
	return nil
}

// Load reads all three tables back into a dataset.Store. Rows come back in
// insertion order, so a loaded store matches the imported one.
func (s *Store) Load(ctx context.Context) (*dataset.Store, error) {
	injuries, err := queryAll(ctx, s.db,
		`SELECT trmt_date, age, sex, race, body_part, diag, location, prod_code, weight, narrative
		 FROM injuries ORDER BY id`,
		func(rows *sql.Rows, n int) (model.InjuryRecord, error) {
			var r model.InjuryRecord
			var date, sex string
			if err := rows.Scan(&date, &r.Age, &sex, &r.Race, &r.BodyPart, &r.Diagnosis, &r.Location, &r.ProductCode, &r.Weight, &r.Narrative); err != nil {
				return r, err
			}
			parsed, err := dataset.ParseDate(date)
			if err != nil {
				return r, &dataset.LoadError{File: "injuries", Line: n, Column: "trmt_date", Err: err}
			}
			r.TreatmentDate = parsed
			if r.Sex, err = parseSex("injuries", n, sex); err != nil {
				return r, err
			}
			return r, nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load injuries: %w", err)
	}
	products, err := queryAll(ctx, s.db, `SELECT prod_code, title FROM products ORDER BY id`,
		func(rows *sql.Rows, _ int) (model.ProductEntry, error) {
			var p model.ProductEntry
			err := rows.Scan(&p.Code, &p.Title)
			return p, err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	population, err := queryAll(ctx, s.db, `SELECT age, sex, population FROM population ORDER BY rowid`,
		func(rows *sql.Rows, n int) (model.PopulationEntry, error) {
			var p model.PopulationEntry
			var sex string
			if err := rows.Scan(&p.Age, &sex, &p.Population); err != nil {
				return p, err
			}
			var err error
			p.Sex, err = parseSex("population", n, sex)
			return p, err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load population: %w", err)
	}
	return dataset.New(injuries, products, population)
}

// parseSex applies the same check as the CSV loader; line is the 1-based row
// number within the table.
func parseSex(table string, line int, value string) (model.Sex, error) {
	sex, err := model.ParseSex(value)
	if err != nil {
		return "", &dataset.LoadError{File: table, Line: line, Column: "sex", Err: fmt.Errorf("%w: %v", dataset.ErrMalformedValue, err)}
	}
	return sex, nil
}

func queryAll[T any](ctx context.Context, db *sql.DB, query string, scan func(*sql.Rows, int) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []T
	for rows.Next() {
		item, err := scan(rows, len(result)+1)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Counts returns the number of rows in each table.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM injuries), (SELECT COUNT(*) FROM products), (SELECT COUNT(*) FROM population)`,
	).Scan(&c.Injuries, &c.Products, &c.Population)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count rows: %w", err)
	}
	return c, nil
}
