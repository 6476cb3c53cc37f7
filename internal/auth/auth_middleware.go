package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sebuszqo/HomeBudget/internal/log"
	"github.com/sebuszqo/HomeBudget/internal/user"
)

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// JWTAccessTokenMiddleware resolves the bearer token to a user and stores it
// in the request context; anything unresolvable is answered with 401.
func (s *service) JWTAccessTokenMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, r, http.StatusUnauthorized, "Authorization header is required")
				return
			}

			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || strings.TrimSpace(tokenString) == "" {
				writeJSONError(w, r, http.StatusUnauthorized, "Invalid token format")
				return
			}

			userID, err := s.jwtManager.ValidateAccessToken(strings.TrimSpace(tokenString))
			if err != nil {
				writeJSONError(w, r, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			currentUser, err := s.userService.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					writeJSONError(w, r, http.StatusUnauthorized, "Could not validate credentials")
					return
				}
				log.FromContext(r.Context()).Error("could not load user", log.FieldError, err, log.FieldUserID, userID)
				writeJSONError(w, r, http.StatusInternalServerError, ErrInternalError.Error())
				return
			}

			ctx := user.NewContext(r.Context(), currentUser)
			ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldUserID, userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSONError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	if statusCode == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(ErrorResponse{
		Status:  "error",
		Message: message,
		Code:    statusCode,
	})
	if err != nil {
		logger(r.Context()).Error("JSON encoding error", log.FieldError, err)
	}
}
