package auth

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/sebuszqo/HomeBudget/internal/log"
	"github.com/sebuszqo/HomeBudget/internal/user"
)

type Handler struct {
	authService Service
}

func NewHandler(authService Service) *Handler {
	return &Handler{
		authService: authService,
	}
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger(r.Context()).Error("JSON encoding error", log.FieldError, err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	respondJSON(w, r, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

func tokenResponse(accessToken string) map[string]interface{} {
	return map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"access_token": accessToken,
			"token_type":   "bearer",
		},
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

// decodeLogin reads form fields, falling back to a JSON body.
func decodeLogin(r *http.Request) (loginRequest, error) {
	var req loginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Username = r.PostFormValue("username")
	req.Password = r.PostFormValue("password")
	req.OTP = r.PostFormValue("otp")
	return req, nil
}

func (s *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLogin(r)
	if err != nil || req.Username == "" || req.Password == "" {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.authService.Login(r.Context(), req.Username, req.Password, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			respondError(w, r, http.StatusUnauthorized, "Incorrect username or password")
		case errors.Is(err, ErrInvalid2FACode):
			respondError(w, r, http.StatusUnauthorized, "Invalid 2fa code")
		default:
			logger(r.Context()).Error("login failed", log.FieldOperation, log.OpLogin, log.FieldError, err)
			respondError(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	if result.TwoFactorRequired {
		respondJSON(w, r, http.StatusOK, map[string]interface{}{
			"status":  "success",
			"message": "Two-factor authentication required",
			"data": map[string]interface{}{
				"two_factor_required": true,
				"session_token":       result.SessionToken,
			},
		})
		return
	}

	respondJSON(w, r, http.StatusOK, tokenResponse(result.AccessToken))
}

func (s *Handler) HandleVerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionToken string `json:"session_token"`
		Code         string `json:"code"`
	}

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil || req.SessionToken == "" || req.Code == "" {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	accessToken, err := s.authService.VerifyTwoFactor(r.Context(), req.SessionToken, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSessionToken), errors.Is(err, ErrExpiredSessionToken),
			errors.Is(err, ErrInvalid2FACode), errors.Is(err, ErrUserNotFound), errors.Is(err, ErrUser2FANotEnabled):
			respondError(w, r, http.StatusUnauthorized, err.Error())
		default:
			logger(r.Context()).Error("two-factor verification failed", log.FieldError, err)
			respondError(w, r, http.StatusInternalServerError, "Could not verify two-factor authentication")
		}
		return
	}

	respondJSON(w, r, http.StatusOK, tokenResponse(accessToken))
}

func (s *Handler) HandleSetupTwoFactor(w http.ResponseWriter, r *http.Request) {
	current, ok := user.FromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	otpURI, err := s.authService.SetupTwoFactor(r.Context(), current.ID)
	if err != nil {
		if errors.Is(err, ErrUser2FAAlreadyEnabled) {
			respondError(w, r, http.StatusConflict, "Two-factor authentication is already enabled")
			return
		}
		logger(r.Context()).Error("two-factor setup failed", log.FieldError, err)
		respondError(w, r, http.StatusInternalServerError, "Could not register two-factor authentication")
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Two-factor authentication initiated. Please verify to enable.",
		"data": map[string]string{
			"otp_uri": otpURI,
		},
	})
}

func (s *Handler) HandleEnableTwoFactor(w http.ResponseWriter, r *http.Request) {
	s.handleTwoFactorToggle(w, r, s.authService.EnableTwoFactor, "Two-factor authentication enabled successfully")
}

func (s *Handler) HandleDisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	s.handleTwoFactorToggle(w, r, s.authService.DisableTwoFactor, "Two-factor authentication disabled successfully")
}

func (s *Handler) handleTwoFactorToggle(
	w http.ResponseWriter,
	r *http.Request,
	toggle func(ctx context.Context, userID int64, code string) error,
	successMessage string,
) {
	current, ok := user.FromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		respondError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := toggle(r.Context(), current.ID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalid2FACode):
			respondError(w, r, http.StatusUnauthorized, "Invalid 2fa code")
		case errors.Is(err, ErrUser2FAAlreadyEnabled):
			respondError(w, r, http.StatusConflict, "Two-factor authentication is already enabled")
		case errors.Is(err, ErrUser2FANotEnabled):
			respondError(w, r, http.StatusBadRequest, "Two-factor authentication is not enabled")
		case errors.Is(err, ErrNoTwoFactorSecret):
			respondError(w, r, http.StatusBadRequest, "Two-factor authentication has not been set up")
		default:
			logger(r.Context()).Error("two-factor update failed", log.FieldError, err)
			respondError(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]string{
		"status":  "success",
		"message": successMessage,
	})
}
