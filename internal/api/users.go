package api

import (
	"encoding/json"
	"net/http"

	"github.com/grocerymarts/backend/internal/models"
	"github.com/grocerymarts/backend/internal/store"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, pageSize := parsePageParams(r)
	result, err := store.ListAccounts(ctx, s.db, page, pageSize)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type updateRoleRequest struct {
	Role models.Role `json:"role"`
}

func (s *Server) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		respondError(w, http.StatusBadRequest, "invalid role")
		return
	}

	account, err := store.UpdateAccountRole(ctx, s.db, accountID, req.Role)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, account)
}
