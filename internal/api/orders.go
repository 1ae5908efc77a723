package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/grocerymarts/backend/internal/models"
	"github.com/grocerymarts/backend/internal/store"
)

type createOrderRequest struct {
	Items []struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	} `json:"items"`
	CreditsToUse    decimal.Decimal        `json:"credits_to_use"`
	PaymentMethod   models.PaymentMethod   `json:"payment_method"`
	DeliveryAddress models.DeliveryAddress `json:"delivery_address"`
	Notes           string                 `json:"notes"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := accountIDFrom(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]store.OrderItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, store.OrderItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := store.CreateOrder(ctx, s.db, store.CreateOrderRequest{
		AccountID:       accountID,
		Items:           items,
		CreditsToUse:    req.CreditsToUse,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if account, err := store.GetAccount(ctx, s.db, accountID); err == nil {
		if err := s.notifier.OrderConfirmed(account.Email, order); err != nil {
			log.WithError(err).WithField("order_id", order.ID).Warn("order confirmation email failed")
		}
	}

	respondJSON(w, http.StatusCreated, order)
}

func (s *Server) handleListMyOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := accountIDFrom(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	page, err := store.ListOrdersByAccount(ctx, s.db, accountID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := accountIDFrom(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	orderID, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := store.GetOrder(ctx, s.db, orderID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if order.AccountID != accountID && roleFrom(ctx) != models.RoleAdmin {
		respondError(w, http.StatusForbidden, "access denied")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := accountIDFrom(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	orderID, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	isAdmin := roleFrom(ctx) == models.RoleAdmin
	order, err := store.CancelOrder(ctx, s.db, orderID, accountID, isAdmin)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if account, err := store.GetAccount(ctx, s.db, order.AccountID); err == nil {
		if err := s.notifier.OrderCancelled(account.Email, order); err != nil {
			log.WithError(err).WithField("order_id", order.ID).Warn("order cancellation email failed")
		}
	}

	respondJSON(w, http.StatusOK, order)
}

type updateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := store.UpdateOrderStatus(ctx, s.db, orderID, req.Status)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleListAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, pageSize := parsePageParams(r)
	status := models.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	result, err := store.ListAllOrders(ctx, s.db, status, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func parsePageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
