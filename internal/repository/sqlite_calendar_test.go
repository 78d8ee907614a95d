package repository

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apetrov/orderflow/internal/testutil"
)

func TestCalendarRepo_DeadlineAfter_UsesWorkingDays(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteCalendarRepo(db)
	ctx := context.Background()

	// Mon 2025-03-10 through the following week, weekend marked non-working.
	days := map[string]bool{
		"2025-03-10": true,
		"2025-03-11": true,
		"2025-03-12": true,
		"2025-03-13": true,
		"2025-03-14": true,
		"2025-03-15": false,
		"2025-03-16": false,
		"2025-03-17": true,
		"2025-03-18": true,
	}
	for day, working := range days {
		d, err := time.Parse("2006-01-02", day)
		require.NoError(t, err)
		require.NoError(t, repo.SetDay(ctx, d, working))
	}

	start := time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)

	// 3 working days after Thu 13th skips the weekend: Fri 14, Mon 17, Tue 18.
	deadline, err := repo.DeadlineAfter(ctx, start, 3)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-18", deadline.Format("2006-01-02"))
}

func TestCalendarRepo_DeadlineAfter_StrictlyAfterStart(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteCalendarRepo(db)
	ctx := context.Background()

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetDay(ctx, start, true))
	next := start.AddDate(0, 0, 1)
	require.NoError(t, repo.SetDay(ctx, next, true))

	deadline, err := repo.DeadlineAfter(ctx, start, 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", deadline.Format("2006-01-02"),
		"the start day itself must not count")
}

func TestCalendarRepo_DeadlineAfter_FallbackWithoutCalendar(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteCalendarRepo(db)
	ctx := context.Background()

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	deadline, err := repo.DeadlineAfter(ctx, start, 5)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", deadline.Format("2006-01-02"),
		"empty calendar falls back to plain calendar days")
}

func TestCalendarRepo_DeadlineAfter_ClampsNonPositiveTerm(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteCalendarRepo(db)
	ctx := context.Background()

	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	deadline, err := repo.DeadlineAfter(ctx, start, 0)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", deadline.Format("2006-01-02"))
	assert.Contains(t, logs.String(), "using one day",
		"clamping a broken term must leave a trace")
	assert.Contains(t, logs.String(), "business_days=0")
}
