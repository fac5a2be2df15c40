// Package sqlite stores appointments in an embedded SQLite file through bun's
// sqlitedialect. It is the single-node backend: one connection serializes
// every write.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"slotbook/internal/domain"
	"slotbook/internal/store"
)

type AppointmentRepo struct {
	db *bun.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*AppointmentRepo, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	r := &AppointmentRepo{db: bun.NewDB(sqlDB, sqlitedialect.New())}
	if err := r.migrate(context.Background()); err != nil {
		_ = r.db.Close()
		return nil, fmt.Errorf("sqlite migration: %w", err)
	}
	return r, nil
}

// Timestamps are TEXT in the layout sqlitedialect writes.
func (r *AppointmentRepo) migrate(ctx context.Context) error {
	queries := []string{
		`PRAGMA journal_mode=WAL`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			slot_date TEXT NOT NULL,
			slot_time TEXT NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'cancelled')),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS appointments_active_slot_key
			ON appointments (slot_date, slot_time) WHERE status <> 'cancelled'`,
		`CREATE INDEX IF NOT EXISTS appointments_user_date_idx
			ON appointments (user_id, slot_date, slot_time)`,
	}
	for _, q := range queries {
		if _, err := r.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (r *AppointmentRepo) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *AppointmentRepo) Ping(ctx context.Context) error {
	return classify(r.db.PingContext(ctx))
}

func (r *AppointmentRepo) ListAll(ctx context.Context) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("rowid ASC").
		Scan(ctx)
	if err != nil {
		return nil, classify(fmt.Errorf("list appointments: %w", err))
	}
	return normalizeAll(rows), nil
}

func (r *AppointmentRepo) ListByUser(ctx context.Context, userID string) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		OrderExpr("slot_date ASC, slot_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, classify(fmt.Errorf("list user appointments: %w", err))
	}
	return normalizeAll(rows), nil
}

func (r *AppointmentRepo) Insert(ctx context.Context, appt domain.Appointment, opts store.InsertOptions) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		a, err := store.InsertWithinLimit(ctx, bookingTx{tx: tx}, appt, opts)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return domain.Appointment{}, classify(err)
	}
	return out, nil
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, next domain.Status, opts store.UpdateOptions) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		a, err := store.ApplyStatus(ctx, bookingTx{tx: tx}, id, next, opts)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return domain.Appointment{}, classify(err)
	}
	return out, nil
}

// bookingTx needs no row locks: the single connection already serializes
// every transaction.
type bookingTx struct {
	tx bun.Tx
}

func (t bookingTx) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	n, err := t.tx.NewSelect().
		Model((*domain.Appointment)(nil)).
		Where("user_id = ?", userID).
		Where("status <> ?", domain.StatusCancelled).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count active appointments: %w", err)
	}
	return n, nil
}

func (t bookingTx) InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	m.Date = domain.DateOf(appt.Date)

	if _, err := t.tx.NewInsert().Model(&m).Exec(ctx); err != nil {
		if isSlotViolation(err) {
			return domain.Appointment{}, store.ErrConflict
		}
		return domain.Appointment{}, fmt.Errorf("insert appointment: %w", err)
	}
	return normalize(m), nil
}

func (t bookingTx) LockAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	var a domain.Appointment
	err := t.tx.NewSelect().
		Model(&a).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, fmt.Errorf("get appointment: %w", err)
	}
	return normalize(a), nil
}

func (t bookingTx) SaveStatus(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	res, err := t.tx.NewUpdate().
		Model(&appt).
		Column("status", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("update status: %w", err)
	}
	if affected == 0 {
		return domain.Appointment{}, store.ErrNotFound
	}
	return normalize(appt), nil
}

// normalize matches a written record to what a later read returns: UTC
// timestamps at the microsecond precision sqlitedialect stores.
func normalize(a domain.Appointment) domain.Appointment {
	a.Date = domain.DateOf(a.Date)
	a.CreatedAt = a.CreatedAt.UTC().Truncate(time.Microsecond)
	a.UpdatedAt = a.UpdatedAt.UTC().Truncate(time.Microsecond)
	return a
}

func normalizeAll(rows []domain.Appointment) []domain.Appointment {
	for i := range rows {
		rows[i] = normalize(rows[i])
	}
	return rows
}

func isSlotViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE && strings.Contains(sqliteErr.Error(), "slot_date")
}

// classify wraps lock contention and closed-handle failures with store.ErrUnavailable.
func classify(err error) error {
	if err == nil || errors.Is(err, store.ErrUnavailable) {
		return err
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR:
			return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
		}
		return err
	}
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "sql: database is closed") {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	return err
}
