package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/apetrov/orderflow/internal/db"
)

// SQLiteCalendarRepo implements CalendarRepo over the calendar_days
// table.
type SQLiteCalendarRepo struct {
	db db.DBTX
}

// NewSQLiteCalendarRepo creates a new SQLiteCalendarRepo.
func NewSQLiteCalendarRepo(dbtx db.DBTX) *SQLiteCalendarRepo {
	return &SQLiteCalendarRepo{db: dbtx}
}

// DeadlineAfter returns the Nth working day strictly after start. When
// the calendar has no working day that far ahead it falls back to plain
// calendar-day arithmetic so deadline computation never blocks a
// hand-off on missing calendar data. A non-positive day count is
// treated as one day.
func (r *SQLiteCalendarRepo) DeadlineAfter(ctx context.Context, start time.Time, businessDays int) (time.Time, error) {
	if businessDays < 1 {
		slog.WarnContext(ctx, "non-positive business-day term, using one day",
			"business_days", businessDays)
		businessDays = 1
	}

	var dayStr string
	err := r.db.QueryRowContext(ctx,
		`SELECT day FROM calendar_days
			WHERE day > ? AND is_working = 1
			ORDER BY day LIMIT 1 OFFSET ?`,
		start.Format(dateLayout), businessDays-1,
	).Scan(&dayStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return start.AddDate(0, 0, businessDays), nil
		}
		return time.Time{}, fmt.Errorf("reading calendar: %w", err)
	}

	day, err := time.Parse(dateLayout, dayStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing calendar day: %w", err)
	}
	return day, nil
}

// SetDay records whether a calendar day is a working day.
func (r *SQLiteCalendarRepo) SetDay(ctx context.Context, day time.Time, working bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO calendar_days (day, is_working) VALUES (?, ?)
			ON CONFLICT(day) DO UPDATE SET is_working = excluded.is_working`,
		day.Format(dateLayout), boolToInt(working),
	)
	if err != nil {
		return fmt.Errorf("writing calendar day: %w", err)
	}
	return nil
}
