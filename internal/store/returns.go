package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/grocerymarts/backend/internal/database"
	"github.com/grocerymarts/backend/internal/models"
)

const returnColumns = `id, order_id, account_id, product_id, product_name, quantity,
	reason, description, return_amount, refund_amount, status, admin_notes,
	tracking_number, requested_at, approved_at, rejected_at, shipped_at,
	received_at, refunded_at, created_at, updated_at`

type CreateReturnRequest struct {
	OrderID     int64
	AccountID   int64
	ProductID   int64
	Quantity    int
	Reason      models.ReturnReason
	Description string
}

// CreateReturn validates a return request against the referenced order: the
// order must belong to the requester, the product must appear in it and the
// quantity must not exceed what was ordered. The return amount is recomputed
// from the order line's unit price, never taken from the caller.
func CreateReturn(ctx context.Context, db *sql.DB, req CreateReturnRequest) (*models.ReturnRequest, error) {
	if req.Quantity < 1 {
		return nil, models.ErrInvalidQuantity
	}
	if !req.Reason.IsValid() {
		return nil, models.ErrInvalidReturnReason
	}

	var ret *models.ReturnRequest
	err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		order, err := getOrderTx(ctx, tx, req.OrderID)
		if err != nil {
			return err
		}
		if order.AccountID != req.AccountID {
			return database.ErrForbidden
		}

		var line *models.OrderItem
		for i := range order.Items {
			if order.Items[i].ProductID == req.ProductID {
				line = &order.Items[i]
				break
			}
		}
		if line == nil {
			return database.ErrProductNotInOrder
		}
		if req.Quantity > line.Quantity {
			return database.ErrQuantityExceedsOrder
		}

		returnAmount := line.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))

		ret, err = scanReturn(tx.QueryRowContext(ctx,
			`INSERT INTO returns (order_id, account_id, product_id, product_name, quantity,
			                      reason, description, return_amount, status, requested_at, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW(), NOW())
			 RETURNING `+returnColumns,
			req.OrderID, req.AccountID, req.ProductID, line.ProductName, req.Quantity,
			req.Reason, req.Description, returnAmount, models.ReturnStatusRequested))
		if err != nil {
			return fmt.Errorf("create return: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ret, nil
}

type UpdateReturnStatusRequest struct {
	Status         models.ReturnStatus
	AdminNotes     string
	RefundAmount   *decimal.Decimal
	TrackingNumber string
}

// returnTimestampColumn maps each reachable status to the column stamped on
// entry. Requested has no column here because it is set at creation.
var returnTimestampColumn = map[models.ReturnStatus]string{
	models.ReturnStatusApproved: "approved_at",
	models.ReturnStatusRejected: "rejected_at",
	models.ReturnStatusShipped:  "shipped_at",
	models.ReturnStatusReceived: "received_at",
	models.ReturnStatusRefunded: "refunded_at",
}

// UpdateReturnStatus advances a return request one step. Transitions are
// strictly one-way, and cancellation must go through CancelReturn. Reaching
// refunded defaults the refund amount to the original return amount and
// credits it to the owner's balance in the same transaction.
func UpdateReturnStatus(ctx context.Context, db *sql.DB, returnID int64, req UpdateReturnStatusRequest) (*models.ReturnRequest, error) {
	if !req.Status.IsValid() || req.Status == models.ReturnStatusCancelled || req.Status == models.ReturnStatusRequested {
		return nil, database.ErrInvalidTransition
	}

	var ret *models.ReturnRequest
	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		current, err := getReturnForUpdate(ctx, tx, returnID)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(req.Status) {
			return database.ErrInvalidTransition
		}

		adminNotes := current.AdminNotes
		if req.AdminNotes != "" {
			adminNotes = req.AdminNotes
		}
		tracking := current.TrackingNumber
		if req.TrackingNumber != "" {
			tracking = req.TrackingNumber
		}
		refund := current.RefundAmount
		if req.RefundAmount != nil {
			refund = *req.RefundAmount
		}

		if req.Status == models.ReturnStatusRefunded {
			if refund.IsZero() {
				refund = current.ReturnAmount
			}

			var orderNumber string
			err := tx.QueryRowContext(ctx,
				`SELECT order_number FROM orders WHERE id = $1`, current.OrderID).Scan(&orderNumber)
			if err != nil {
				return fmt.Errorf("get order number: %w", err)
			}
			reason := fmt.Sprintf("Refund for return on order %s", orderNumber)
			if _, err := AddCredits(ctx, tx, current.AccountID, refund, reason); err != nil {
				return err
			}
		}

		query := fmt.Sprintf(
			`UPDATE returns
			 SET status = $1, admin_notes = $2, tracking_number = $3, refund_amount = $4,
			     %s = NOW(), updated_at = NOW()
			 WHERE id = $5`,
			returnTimestampColumn[req.Status])
		if _, err := tx.ExecContext(ctx, query, req.Status, adminNotes, tracking, refund, returnID); err != nil {
			return fmt.Errorf("update return status: %w", err)
		}

		ret, err = getReturnTx(ctx, tx, returnID)
		if err != nil {
			return fmt.Errorf("fetch updated return: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ret, nil
}

// CancelReturn lets the owner (or an admin) withdraw a request that has not
// yet entered the physical return flow.
func CancelReturn(ctx context.Context, db *sql.DB, returnID, requesterID int64, isAdmin bool) (*models.ReturnRequest, error) {
	var ret *models.ReturnRequest
	err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		current, err := getReturnForUpdate(ctx, tx, returnID)
		if err != nil {
			return err
		}
		if current.AccountID != requesterID && !isAdmin {
			return database.ErrForbidden
		}
		if !current.Status.CanBeCancelledByOwner() {
			return database.ErrReturnNotCancellable
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE returns SET status = $1, updated_at = NOW() WHERE id = $2`,
			models.ReturnStatusCancelled, returnID)
		if err != nil {
			return fmt.Errorf("cancel return: %w", err)
		}

		ret, err = getReturnTx(ctx, tx, returnID)
		if err != nil {
			return fmt.Errorf("fetch cancelled return: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ret, nil
}

func GetReturn(ctx context.Context, db *sql.DB, id int64) (*models.ReturnRequest, error) {
	ret, err := scanReturn(db.QueryRowContext(ctx,
		`SELECT `+returnColumns+` FROM returns WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrReturnNotFound
		}
		return nil, fmt.Errorf("get return: %w", err)
	}
	return ret, nil
}

func getReturnTx(ctx context.Context, tx *sql.Tx, id int64) (*models.ReturnRequest, error) {
	ret, err := scanReturn(tx.QueryRowContext(ctx,
		`SELECT `+returnColumns+` FROM returns WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrReturnNotFound
		}
		return nil, err
	}
	return ret, nil
}

func getReturnForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*models.ReturnRequest, error) {
	ret, err := scanReturn(tx.QueryRowContext(ctx,
		`SELECT `+returnColumns+` FROM returns WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrReturnNotFound
		}
		return nil, fmt.Errorf("lock return: %w", err)
	}
	return ret, nil
}

func ListReturnsByAccount(ctx context.Context, db *sql.DB, accountID int64, status models.ReturnStatus, page, pageSize int) (*OffsetPage, error) {
	return listReturns(ctx, db, &accountID, status, page, pageSize)
}

func ListAllReturns(ctx context.Context, db *sql.DB, status models.ReturnStatus, page, pageSize int) (*OffsetPage, error) {
	return listReturns(ctx, db, nil, status, page, pageSize)
}

func listReturns(ctx context.Context, db *sql.DB, accountID *int64, status models.ReturnStatus, page, pageSize int) (*OffsetPage, error) {
	where := ""
	args := []any{}
	if accountID != nil {
		args = append(args, *accountID)
		where = fmt.Sprintf(" WHERE account_id = $%d", len(args))
	}
	if status != "" {
		args = append(args, status)
		if where == "" {
			where = fmt.Sprintf(" WHERE status = $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND status = $%d", len(args))
		}
	}

	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM returns`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count returns: %w", err)
	}

	offset := (page - 1) * pageSize
	args = append(args, pageSize, offset)
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM returns%s ORDER BY requested_at DESC LIMIT $%d OFFSET $%d`,
			returnColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	defer rows.Close()

	var returns []models.ReturnRequest
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan return: %w", err)
		}
		returns = append(returns, *ret)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(returns, total, page, pageSize), nil
}

func scanReturn(s rowScanner) (*models.ReturnRequest, error) {
	ret := &models.ReturnRequest{}
	var approvedAt, rejectedAt, shippedAt, receivedAt, refundedAt sql.NullTime

	err := s.Scan(
		&ret.ID,
		&ret.OrderID,
		&ret.AccountID,
		&ret.ProductID,
		&ret.ProductName,
		&ret.Quantity,
		&ret.Reason,
		&ret.Description,
		&ret.ReturnAmount,
		&ret.RefundAmount,
		&ret.Status,
		&ret.AdminNotes,
		&ret.TrackingNumber,
		&ret.RequestedAt,
		&approvedAt,
		&rejectedAt,
		&shippedAt,
		&receivedAt,
		&refundedAt,
		&ret.CreatedAt,
		&ret.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if approvedAt.Valid {
		ret.ApprovedAt = &approvedAt.Time
	}
	if rejectedAt.Valid {
		ret.RejectedAt = &rejectedAt.Time
	}
	if shippedAt.Valid {
		ret.ShippedAt = &shippedAt.Time
	}
	if receivedAt.Valid {
		ret.ReceivedAt = &receivedAt.Time
	}
	if refundedAt.Valid {
		ret.RefundedAt = &refundedAt.Time
	}
	return ret, nil
}
