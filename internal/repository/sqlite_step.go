package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/apetrov/orderflow/internal/db"
	"github.com/apetrov/orderflow/internal/domain"
)

// stepColumns is the canonical SELECT column list for approval_steps.
const stepColumns = `id, order_id, parent_id, receipt_date, completion_date, deadline,
		recipient_role, recipient_name, sender_role, sender_name,
		status, result, comment, is_rework`

// SQLiteStepRepo implements StepRepo over a SQLite database. It accepts
// a db.DBTX so the same implementation serves both plain reads and
// tx-scoped writes inside a UnitOfWork callback.
type SQLiteStepRepo struct {
	db db.DBTX
}

// NewSQLiteStepRepo creates a new SQLiteStepRepo.
func NewSQLiteStepRepo(dbtx db.DBTX) *SQLiteStepRepo {
	return &SQLiteStepRepo{db: dbtx}
}

func (r *SQLiteStepRepo) Create(ctx context.Context, s *domain.ApprovalStep) error {
	query := `INSERT INTO approval_steps (order_id, parent_id, receipt_date, completion_date,
		deadline, recipient_role, recipient_name, sender_role, sender_name,
		status, result, comment, is_rework)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		s.OrderID,
		nullableInt64ToValue(s.ParentID),
		s.ReceiptDate.UTC().Format(time.RFC3339),
		nullableTimeToString(s.CompletionDate, time.RFC3339),
		s.Deadline.Format(dateLayout),
		string(s.RecipientRole),
		s.RecipientName,
		string(s.SenderRole),
		s.SenderName,
		string(s.Status),
		resultToValue(s.Result),
		s.Comment,
		boolToInt(s.IsRework),
	)
	if err != nil {
		return fmt.Errorf("inserting approval step: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted step id: %w", err)
	}
	s.ID = id
	return nil
}

func (r *SQLiteStepRepo) Update(ctx context.Context, s *domain.ApprovalStep) error {
	query := `UPDATE approval_steps SET parent_id = ?, completion_date = ?,
		status = ?, result = ?, comment = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableInt64ToValue(s.ParentID),
		nullableTimeToString(s.CompletionDate, time.RFC3339),
		string(s.Status),
		resultToValue(s.Result),
		s.Comment,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating approval step: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated step: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("approval step %d: %w", s.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteStepRepo) UpdateResult(ctx context.Context, id int64, result domain.StepResult) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE approval_steps SET result = ? WHERE id = ?`, resultToValue(result), id)
	if err != nil {
		return fmt.Errorf("updating step result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated step result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("approval step %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteStepRepo) GetByID(ctx context.Context, id int64) (*domain.ApprovalStep, error) {
	query := `SELECT ` + stepColumns + ` FROM approval_steps WHERE id = ?`
	return r.scanStep(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteStepRepo) ListByOrder(ctx context.Context, orderID int64) ([]domain.ApprovalStep, error) {
	query := `SELECT ` + stepColumns + ` FROM approval_steps
		WHERE order_id = ? ORDER BY receipt_date, id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing steps by order: %w", err)
	}
	defer rows.Close()
	return r.scanSteps(rows)
}

func (r *SQLiteStepRepo) ListByRecipient(ctx context.Context, orderID int64, role domain.Role, name string) ([]domain.ApprovalStep, error) {
	query := `SELECT ` + stepColumns + ` FROM approval_steps
		WHERE order_id = ? AND recipient_role = ? AND recipient_name = ?
		ORDER BY receipt_date, id`
	rows, err := r.db.QueryContext(ctx, query, orderID, string(role), name)
	if err != nil {
		return nil, fmt.Errorf("listing steps by recipient: %w", err)
	}
	defer rows.Close()
	return r.scanSteps(rows)
}

func (r *SQLiteStepRepo) ActiveForRecipient(ctx context.Context, orderID int64, name string) (*domain.ApprovalStep, error) {
	query := `SELECT ` + stepColumns + ` FROM approval_steps
		WHERE order_id = ? AND recipient_name = ? AND completion_date IS NULL
		ORDER BY receipt_date DESC, id DESC LIMIT 1`
	return r.scanStep(r.db.QueryRowContext(ctx, query, orderID, name))
}

func (r *SQLiteStepRepo) ActiveRework(ctx context.Context, orderID int64, role domain.Role, name string) (*domain.ApprovalStep, error) {
	query := `SELECT ` + stepColumns + ` FROM approval_steps
		WHERE order_id = ? AND recipient_role = ? AND recipient_name = ?
		  AND is_rework = 1 AND status = 'in_progress'
		ORDER BY receipt_date DESC, id DESC LIMIT 1`
	return r.scanStep(r.db.QueryRowContext(ctx, query, orderID, string(role), name))
}

func resultToValue(result domain.StepResult) interface{} {
	if result == domain.ResultNone {
		return nil
	}
	return string(result)
}

func (r *SQLiteStepRepo) scanStep(row *sql.Row) (*domain.ApprovalStep, error) {
	var s domain.ApprovalStep
	var parentID sql.NullInt64
	var receiptStr, deadlineStr, statusStr string
	var completionStr, resultStr sql.NullString
	var recipientRoleStr, senderRoleStr string
	var isReworkInt int

	err := row.Scan(
		&s.ID, &s.OrderID, &parentID, &receiptStr, &completionStr, &deadlineStr,
		&recipientRoleStr, &s.RecipientName, &senderRoleStr, &s.SenderName,
		&statusStr, &resultStr, &s.Comment, &isReworkInt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("approval step: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning approval step: %w", err)
	}
	if err := populateStep(&s, parentID, receiptStr, completionStr, deadlineStr,
		recipientRoleStr, senderRoleStr, statusStr, resultStr, isReworkInt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteStepRepo) scanSteps(rows *sql.Rows) ([]domain.ApprovalStep, error) {
	var steps []domain.ApprovalStep
	for rows.Next() {
		var s domain.ApprovalStep
		var parentID sql.NullInt64
		var receiptStr, deadlineStr, statusStr string
		var completionStr, resultStr sql.NullString
		var recipientRoleStr, senderRoleStr string
		var isReworkInt int

		err := rows.Scan(
			&s.ID, &s.OrderID, &parentID, &receiptStr, &completionStr, &deadlineStr,
			&recipientRoleStr, &s.RecipientName, &senderRoleStr, &s.SenderName,
			&statusStr, &resultStr, &s.Comment, &isReworkInt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning approval step row: %w", err)
		}
		if err := populateStep(&s, parentID, receiptStr, completionStr, deadlineStr,
			recipientRoleStr, senderRoleStr, statusStr, resultStr, isReworkInt); err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating approval steps: %w", err)
	}
	return steps, nil
}

func populateStep(s *domain.ApprovalStep, parentID sql.NullInt64,
	receiptStr string, completionStr sql.NullString, deadlineStr string,
	recipientRoleStr, senderRoleStr, statusStr string, resultStr sql.NullString,
	isReworkInt int) error {

	if parentID.Valid {
		pid := parentID.Int64
		s.ParentID = &pid
	}

	receipt, err := time.Parse(time.RFC3339, receiptStr)
	if err != nil {
		return fmt.Errorf("parsing receipt date: %w", err)
	}
	s.ReceiptDate = receipt

	deadline, err := time.Parse(dateLayout, deadlineStr)
	if err != nil {
		return fmt.Errorf("parsing deadline: %w", err)
	}
	s.Deadline = deadline

	s.CompletionDate = parseNullableTime(completionStr, time.RFC3339)
	s.RecipientRole = domain.Role(recipientRoleStr)
	s.SenderRole = domain.Role(senderRoleStr)
	s.Status = domain.StepStatus(statusStr)
	if resultStr.Valid {
		s.Result = domain.StepResult(resultStr.String)
	}
	s.IsRework = intToBool(isReworkInt)
	return nil
}
