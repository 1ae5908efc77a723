package api

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/grocerymarts/backend/internal/auth"
	"github.com/grocerymarts/backend/internal/store"
)

type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Contact      string `json:"contact"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code"`
}

type authResponse struct {
	Account interface{} `json:"account"`
	Token   string      `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "name and email are required")
		return
	}
	if len(req.Password) < 6 {
		respondError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	account, err := store.CreateAccount(ctx, s.db, s.policy, store.CreateAccountRequest{
		Name:         req.Name,
		Email:        req.Email,
		Contact:      req.Contact,
		PasswordHash: passwordHash,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	// The account is committed; bonuses are best effort from here on.
	store.DistributeReferralRewards(ctx, s.db, s.policy, account)

	if err := s.notifier.Welcome(account.Email, account.Name); err != nil {
		log.WithError(err).WithField("account_id", account.ID).Warn("welcome email failed")
	}

	token, err := s.tokens.Generate(account.ID, account.Role)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{Account: account, Token: token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := store.GetAccountByEmail(ctx, s.db, req.Email)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := auth.CheckPassword(account.PasswordHash, req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.tokens.Generate(account.ID, account.Role)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Account: account, Token: token})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := accountIDFrom(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	account, err := store.GetAccount(ctx, s.db, accountID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"account":      account,
		"can_purchase": account.CanMakePurchase(time.Now()),
	})
}
