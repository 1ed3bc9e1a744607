package shift

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const sessionColumns = `id, operator_id, status, opening_balance, opened_at, actual_cash, expected_cash,
	difference, closed_at, notes, sales_count, cash_sales`

// SQLiteStore keeps the shift journal in a local SQLite file so the open
// session survives a terminal restart.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (s *SQLiteStore) GetOpen(ctx context.Context, operatorID string) (*domain.ShiftSession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM shift_sessions
		WHERE operator_id = $1 AND status = $2
		ORDER BY opened_at DESC
		LIMIT 1`

	session, err := scanSession(s.db.QueryRowContext(ctx, query, operatorID, domain.ShiftStatusOpen))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query open session: %w", err)
	}
	return session, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.ShiftSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM shift_sessions WHERE id = $1`

	session, err := scanSession(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session by id: %w", err)
	}
	return session, nil
}

// Save inserts or updates a session. Rows already closed are never updated.
func (s *SQLiteStore) Save(ctx context.Context, session *domain.ShiftSession) error {
	query := `INSERT INTO shift_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			actual_cash = excluded.actual_cash,
			expected_cash = excluded.expected_cash,
			difference = excluded.difference,
			closed_at = excluded.closed_at,
			notes = excluded.notes,
			sales_count = excluded.sales_count,
			cash_sales = excluded.cash_sales
		WHERE shift_sessions.status = 'open'`

	var closedAt sql.NullTime
	if session.ClosedAt != nil {
		closedAt = sql.NullTime{Time: session.ClosedAt.UTC(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.OperatorID,
		string(session.Status),
		session.OpeningBalance.String(),
		session.OpenedAt.UTC(),
		nullDecimal(session.ActualCash),
		nullDecimal(session.ExpectedCash),
		nullDecimal(session.Difference),
		closedAt,
		session.Notes,
		session.SalesCount,
		session.CashSales.String(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if affected == 0 {
		return ErrSessionClosed
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*domain.ShiftSession, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + sessionColumns + ` FROM shift_sessions ORDER BY opened_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.ShiftSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return sessions, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.ShiftSession, error) {
	var (
		session                        domain.ShiftSession
		status                         string
		actualCash, expectedCash, diff decimal.NullDecimal
		closedAt                       sql.NullTime
	)
	err := row.Scan(
		&session.ID,
		&session.OperatorID,
		&status,
		&session.OpeningBalance,
		&session.OpenedAt,
		&actualCash,
		&expectedCash,
		&diff,
		&closedAt,
		&session.Notes,
		&session.SalesCount,
		&session.CashSales,
	)
	if err != nil {
		return nil, err
	}

	session.Status = domain.ShiftStatus(status)
	session.ActualCash = decimalPtr(actualCash)
	session.ExpectedCash = decimalPtr(expectedCash)
	session.Difference = decimalPtr(diff)
	if closedAt.Valid {
		t := closedAt.Time
		session.ClosedAt = &t
	}
	return &session, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
