package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/grocerymarts/backend/internal/database"
	"github.com/grocerymarts/backend/internal/models"
)

const orderColumns = `id, account_id, order_number, status, subtotal, credits_used,
	cash_amount, total_amount, payment_method, delivery_street, delivery_city,
	delivery_state, delivery_postal_code, delivery_country, notes,
	created_at, updated_at, version`

const maxOrderNotesLength = 500

type OrderItemRequest struct {
	ProductID int64
	Quantity  int
}

type CreateOrderRequest struct {
	AccountID       int64
	Items           []OrderItemRequest
	CreditsToUse    decimal.Decimal
	PaymentMethod   models.PaymentMethod
	DeliveryAddress models.DeliveryAddress
	Notes           string
}

// generateOrderNumber builds a collision-free human-readable number from a
// millisecond timestamp, the running order count and a random suffix.
func generateOrderNumber(seq int64) string {
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return fmt.Sprintf("ORD-%d-%04d-%s", time.Now().UnixMilli(), seq%10000, suffix)
}

// CreateOrder is the checkout path. Inside one serializable transaction it
// locks every product, snapshots catalog prices into the order lines,
// recomputes the settlement server-side, deducts the applied credits,
// decrements stock conditionally and persists the order. Any failed step
// rolls the whole checkout back.
func CreateOrder(ctx context.Context, db *sql.DB, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, models.ErrNoItems
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("product %d: %w", item.ProductID, models.ErrInvalidQuantity)
		}
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentCashOnly
	}
	if !req.PaymentMethod.IsValid() {
		return nil, models.ErrInvalidPaymentMethod
	}
	if len(req.Notes) > maxOrderNotesLength {
		return nil, models.ErrNotesTooLong
	}

	var order *models.Order
	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, req.AccountID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check account exists: %w", err)
		}
		if !exists {
			return database.ErrAccountNotFound
		}

		items := make([]models.OrderItem, 0, len(req.Items))
		for _, line := range req.Items {
			product, err := lockProduct(ctx, tx, line.ProductID)
			if err != nil {
				return err
			}
			if !product.IsActive {
				return fmt.Errorf("product %q: %w", product.Name, database.ErrProductInactive)
			}
			if product.StockQuantity < line.Quantity {
				return fmt.Errorf("product %q: %w", product.Name, database.ErrInsufficientStock)
			}
			items = append(items, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   product.Price,
			})
		}

		settlement, pricedItems, err := models.ComputeSettlement(items, req.CreditsToUse)
		if err != nil {
			return err
		}

		var seq int64
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&seq); err != nil {
			return fmt.Errorf("count orders: %w", err)
		}
		orderNumber := generateOrderNumber(seq + 1)

		if settlement.CreditsUsed.IsPositive() {
			reason := fmt.Sprintf("Credits applied to order %s", orderNumber)
			if _, err := DeductCredits(ctx, tx, req.AccountID, settlement.CreditsUsed, reason); err != nil {
				return err
			}
		}

		var orderID int64
		err = tx.QueryRowContext(ctx,
			`INSERT INTO orders (account_id, order_number, status, subtotal, credits_used, cash_amount,
			                     total_amount, payment_method, delivery_street, delivery_city, delivery_state,
			                     delivery_postal_code, delivery_country, notes, created_at, updated_at, version)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW(), 1)
			 RETURNING id`,
			req.AccountID, orderNumber, models.OrderStatusPending,
			settlement.Subtotal, settlement.CreditsUsed, settlement.CashDue, settlement.Total,
			req.PaymentMethod, req.DeliveryAddress.Street, req.DeliveryAddress.City,
			req.DeliveryAddress.State, req.DeliveryAddress.PostalCode,
			deliveryCountryOrDefault(req.DeliveryAddress.Country), req.Notes).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, item := range pricedItems {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, total_price, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
				orderID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.TotalPrice)
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}

			if err := DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("product %q: %w", item.ProductName, err)
			}
		}

		next := time.Now().AddDate(0, 1, 0)
		if err := SetNextPurchaseDate(ctx, tx, req.AccountID, next); err != nil {
			return err
		}

		order, err = getOrderTx(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("fetch created order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func deliveryCountryOrDefault(country string) string {
	if country == "" {
		return "India"
	}
	return country
}

// CancelOrder flips a non-terminal order to cancelled, restores every line's
// stock and refunds used credits, all inside one transaction so the three
// effects land together or not at all. Only the owner or an admin may cancel.
func CancelOrder(ctx context.Context, db *sql.DB, orderID, requesterID int64, isAdmin bool) (*models.Order, error) {
	var order *models.Order
	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		current, err := getOrderForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if current.AccountID != requesterID && !isAdmin {
			return database.ErrForbidden
		}
		if !current.Status.CanBeCancelled() {
			return database.ErrOrderNotCancellable
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE orders
			 SET status = $1, updated_at = NOW(), version = version + 1
			 WHERE id = $2
			   AND status NOT IN ($3, $4)`,
			models.OrderStatusCancelled, orderID,
			models.OrderStatusDelivered, models.OrderStatusCancelled)
		if err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if affected == 0 {
			return database.ErrOrderNotCancellable
		}

		items, err := getOrderItems(ctx, tx, orderID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := RestoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if current.CreditsUsed.IsPositive() {
			reason := fmt.Sprintf("Refund for cancelled order %s", current.OrderNumber)
			if _, err := AddCredits(ctx, tx, current.AccountID, current.CreditsUsed, reason); err != nil {
				return err
			}
		}

		order, err = getOrderTx(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("fetch cancelled order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// UpdateOrderStatus advances an order along the admin-managed lifecycle.
// Cancellation is rejected here on purpose: it must go through CancelOrder so
// stock restore and credit refund always accompany the status flip.
func UpdateOrderStatus(ctx context.Context, db *sql.DB, orderID int64, target models.OrderStatus) (*models.Order, error) {
	if !target.IsValid() || target == models.OrderStatusCancelled {
		return nil, database.ErrInvalidTransition
	}

	var order *models.Order
	err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		current, err := getOrderForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(target) {
			return database.ErrInvalidTransition
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE orders SET status = $1, updated_at = NOW(), version = version + 1 WHERE id = $2`,
			target, orderID)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		order, err = getOrderTx(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("fetch updated order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func GetOrder(ctx context.Context, db *sql.DB, id int64) (*models.Order, error) {
	order, err := scanOrder(db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := getOrderItems(ctx, db, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func getOrderTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	order, err := scanOrder(tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, err
	}
	items, err := getOrderItems(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func getOrderForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	order, err := scanOrder(tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}
	return order, nil
}

func getOrderItems(ctx context.Context, q database.Querier, orderID int64) ([]models.OrderItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_name, quantity, unit_price, total_price, created_at
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// ListOrdersByAccount pages through an account's orders newest-first using a
// keyset cursor.
func ListOrdersByAccount(ctx context.Context, db *sql.DB, accountID int64, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE account_id = $1
		   AND (created_at, id) < ($2, $3)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $4`,
		accountID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		last := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// ListAllOrders is the admin view, optionally filtered by status.
func ListAllOrders(ctx context.Context, db *sql.DB, status models.OrderStatus, page, pageSize int) (*OffsetPage, error) {
	where := ""
	args := []any{}
	if status != "" {
		where = " WHERE status = $1"
		args = append(args, status)
	}

	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	offset := (page - 1) * pageSize
	args = append(args, pageSize, offset)
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			orderColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(orders, total, page, pageSize), nil
}

func scanOrder(s rowScanner) (*models.Order, error) {
	order := &models.Order{}
	err := s.Scan(
		&order.ID,
		&order.AccountID,
		&order.OrderNumber,
		&order.Status,
		&order.Subtotal,
		&order.CreditsUsed,
		&order.CashAmount,
		&order.TotalAmount,
		&order.PaymentMethod,
		&order.DeliveryAddress.Street,
		&order.DeliveryAddress.City,
		&order.DeliveryAddress.State,
		&order.DeliveryAddress.PostalCode,
		&order.DeliveryAddress.Country,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Version,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}
