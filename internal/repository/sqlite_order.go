package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/apetrov/orderflow/internal/db"
	"github.com/apetrov/orderflow/internal/domain"
)

const orderColumns = `id, reference, name, workshop, type_id,
		is_by_memo, memo_number, memo_author, manufacturing_term,
		created_at, updated_at`

// SQLiteOrderRepo implements OrderRepo over a SQLite database.
type SQLiteOrderRepo struct {
	db db.DBTX
}

// NewSQLiteOrderRepo creates a new SQLiteOrderRepo.
func NewSQLiteOrderRepo(dbtx db.DBTX) *SQLiteOrderRepo {
	return &SQLiteOrderRepo{db: dbtx}
}

func (r *SQLiteOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	query := `INSERT INTO orders (reference, name, workshop, type_id,
		is_by_memo, memo_number, memo_author, manufacturing_term, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		o.Reference,
		o.Name,
		o.Workshop,
		o.TypeID,
		boolToInt(o.IsByMemo),
		o.MemoNumber,
		o.MemoAuthor,
		nullableTimeToString(o.ManufacturingTerm, dateLayout),
		o.CreatedAt.UTC().Format(time.RFC3339),
		o.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted order id: %w", err)
	}
	o.ID = id
	return nil
}

func (r *SQLiteOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	return r.scanOrder(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteOrderRepo) GetByReference(ctx context.Context, reference string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE reference = ?`
	return r.scanOrder(r.db.QueryRowContext(ctx, query, reference))
}

// List returns all orders newest first, each with its trail-derived
// flags computed in SQL rather than by loading every trail.
func (r *SQLiteOrderRepo) List(ctx context.Context) ([]domain.OrderSummary, error) {
	query := `SELECT ` + orderColumns + `,
		EXISTS(SELECT 1 FROM approval_steps s
			WHERE s.order_id = orders.id AND s.is_rework = 1) AS has_rework,
		(SELECT COUNT(*) FROM approval_steps s
			WHERE s.order_id = orders.id AND s.completion_date IS NULL) AS open_steps
		FROM orders ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var summaries []domain.OrderSummary
	for rows.Next() {
		var o domain.Order
		var isByMemoInt, hasReworkInt int
		var termStr sql.NullString
		var createdStr, updatedStr string
		var openSteps int

		err := rows.Scan(
			&o.ID, &o.Reference, &o.Name, &o.Workshop, &o.TypeID,
			&isByMemoInt, &o.MemoNumber, &o.MemoAuthor, &termStr,
			&createdStr, &updatedStr,
			&hasReworkInt, &openSteps,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		if err := populateOrder(&o, isByMemoInt, termStr, createdStr, updatedStr); err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.OrderSummary{
			Order:     o,
			HasRework: intToBool(hasReworkInt),
			OpenSteps: openSteps,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}
	return summaries, nil
}

func (r *SQLiteOrderRepo) Update(ctx context.Context, o *domain.Order) error {
	query := `UPDATE orders SET name = ?, workshop = ?, type_id = ?,
		is_by_memo = ?, memo_number = ?, memo_author = ?,
		manufacturing_term = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		o.Name,
		o.Workshop,
		o.TypeID,
		boolToInt(o.IsByMemo),
		o.MemoNumber,
		o.MemoAuthor,
		nullableTimeToString(o.ManufacturingTerm, dateLayout),
		o.UpdatedAt.UTC().Format(time.RFC3339),
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("updating order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated order: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("order %d: %w", o.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteOrderRepo) TermDays(ctx context.Context, orderID int64) (int, error) {
	var days int
	err := r.db.QueryRowContext(ctx,
		`SELECT t.term_days FROM orders o
			JOIN order_types t ON t.id = o.type_id
			WHERE o.id = ?`, orderID,
	).Scan(&days)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		return 0, fmt.Errorf("reading order term: %w", err)
	}
	return days, nil
}

func (r *SQLiteOrderRepo) Types(ctx context.Context) ([]domain.OrderType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, term_days FROM order_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing order types: %w", err)
	}
	defer rows.Close()

	var types []domain.OrderType
	for rows.Next() {
		var t domain.OrderType
		if err := rows.Scan(&t.ID, &t.Name, &t.TermDays); err != nil {
			return nil, fmt.Errorf("scanning order type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order types: %w", err)
	}
	return types, nil
}

func (r *SQLiteOrderRepo) scanOrder(row *sql.Row) (*domain.Order, error) {
	var o domain.Order
	var isByMemoInt int
	var termStr sql.NullString
	var createdStr, updatedStr string

	err := row.Scan(
		&o.ID, &o.Reference, &o.Name, &o.Workshop, &o.TypeID,
		&isByMemoInt, &o.MemoNumber, &o.MemoAuthor, &termStr,
		&createdStr, &updatedStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("order: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning order: %w", err)
	}
	if err := populateOrder(&o, isByMemoInt, termStr, createdStr, updatedStr); err != nil {
		return nil, err
	}
	return &o, nil
}

func populateOrder(o *domain.Order, isByMemoInt int, termStr sql.NullString, createdStr, updatedStr string) error {
	o.IsByMemo = intToBool(isByMemoInt)
	o.ManufacturingTerm = parseNullableTime(termStr, dateLayout)

	created, err := time.Parse(time.RFC3339, createdStr)
	if err != nil {
		return fmt.Errorf("parsing order created_at: %w", err)
	}
	o.CreatedAt = created

	updated, err := time.Parse(time.RFC3339, updatedStr)
	if err != nil {
		return fmt.Errorf("parsing order updated_at: %w", err)
	}
	o.UpdatedAt = updated
	return nil
}
