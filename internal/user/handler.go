package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	financeErrors "github.com/sebuszqo/HomeBudget/internal/finance/errors"
	"github.com/sebuszqo/HomeBudget/internal/log"
)

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

type profileDTO struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Balance  json.Number `json:"balance"`
}

func toProfileDTO(u *User) profileDTO {
	return profileDTO{
		ID:       u.ID,
		Username: u.Username,
		Balance:  json.Number(u.Balance.StringFixed(2)),
	}
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.FromContext(r.Context()).Error("JSON encoding error", log.FieldError, err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			respondError(w, r, http.StatusConflict, "Username already registered")
		case errors.Is(err, ErrUsernameLength), errors.Is(err, ErrEmptyPassword):
			respondError(w, r, http.StatusBadRequest, err.Error())
		default:
			log.FromContext(r.Context()).Error("could not register user", log.FieldError, err)
			respondError(w, r, http.StatusInternalServerError, "Could not register user")
		}
		return
	}

	respondJSON(w, r, http.StatusCreated, map[string]interface{}{
		"status": "success",
		"data":   toProfileDTO(user),
	})
}

func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := FromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   toProfileDTO(user),
	})
}

func (h *Handler) HandleAdjustBalance(w http.ResponseWriter, r *http.Request) {
	current, ok := FromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Amount *decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.AdjustBalance(r.Context(), current.ID, *req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, financeErrors.ErrInsufficientBalance):
			respondError(w, r, http.StatusBadRequest, financeErrors.ErrInsufficientBalance.Error())
		case errors.Is(err, ErrInvalidAmount), financeErrors.IsValidationError(err):
			respondError(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUserNotFound):
			respondError(w, r, http.StatusUnauthorized, "Unauthorized")
		default:
			log.FromContext(r.Context()).Error("could not adjust balance", log.FieldError, err, log.FieldUserID, current.ID)
			respondError(w, r, http.StatusInternalServerError, "Could not adjust balance")
		}
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   toProfileDTO(user),
	})
}
