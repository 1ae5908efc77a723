package api

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/grocerymarts/backend/internal/models"
	"github.com/grocerymarts/backend/internal/store"
)

type createReturnRequest struct {
	OrderID     int64               `json:"order_id"`
	ProductID   int64               `json:"product_id"`
	Quantity    int                 `json:"quantity"`
	Reason      models.ReturnReason `json:"reason"`
	Description string              `json:"description"`
}

func (s *Server) handleCreateReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := accountIDFrom(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ret, err := store.CreateReturn(ctx, s.db, store.CreateReturnRequest{
		OrderID:     req.OrderID,
		AccountID:   accountID,
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		Reason:      req.Reason,
		Description: req.Description,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, ret)
}

func (s *Server) handleListMyReturns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := accountIDFrom(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	page, pageSize := parsePageParams(r)
	status := models.ReturnStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	result, err := store.ListReturnsByAccount(ctx, s.db, accountID, status, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := accountIDFrom(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	returnID, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid return ID")
		return
	}

	ret, err := store.GetReturn(ctx, s.db, returnID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if ret.AccountID != accountID && roleFrom(ctx) != models.RoleAdmin {
		respondError(w, http.StatusForbidden, "access denied")
		return
	}

	respondJSON(w, http.StatusOK, ret)
}

func (s *Server) handleCancelReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := accountIDFrom(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	returnID, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid return ID")
		return
	}

	isAdmin := roleFrom(ctx) == models.RoleAdmin
	ret, err := store.CancelReturn(ctx, s.db, returnID, accountID, isAdmin)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ret)
}

type updateReturnStatusRequest struct {
	Status         models.ReturnStatus `json:"status"`
	AdminNotes     string              `json:"admin_notes"`
	RefundAmount   *decimal.Decimal    `json:"refund_amount"`
	TrackingNumber string              `json:"tracking_number"`
}

func (s *Server) handleUpdateReturnStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	returnID, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid return ID")
		return
	}

	var req updateReturnStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ret, err := store.UpdateReturnStatus(ctx, s.db, returnID, store.UpdateReturnStatusRequest{
		Status:         req.Status,
		AdminNotes:     req.AdminNotes,
		RefundAmount:   req.RefundAmount,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if account, err := store.GetAccount(ctx, s.db, ret.AccountID); err == nil {
		if err := s.notifier.ReturnUpdated(account.Email, ret); err != nil {
			log.WithError(err).WithField("return_id", ret.ID).Warn("return update email failed")
		}
	}

	respondJSON(w, http.StatusOK, ret)
}

func (s *Server) handleListAllReturns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, pageSize := parsePageParams(r)
	status := models.ReturnStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	result, err := store.ListAllReturns(ctx, s.db, status, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
