package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docvault/internal/domain"
	"docvault/internal/infra/auth/rbac"
)

// requireAuth resolves the bearer token to a fresh account record. Role
// and active status come from the store, not the token, so a role change
// or deactivation takes effect before the token expires.
func (s *Server) requireAuth(c *gin.Context) (domain.User, bool) {
	if s.tokens == nil || s.userStore == nil {
		writeErrorCode(c, http.StatusInternalServerError, "AUTH_CONFIG_ERROR", "auth configuration error")
		return domain.User{}, false
	}
	raw := extractBearerToken(c.GetHeader("Authorization"))
	if raw == "" {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return domain.User{}, false
	}
	username, _, err := s.tokens.Parse(raw)
	if err != nil {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid bearer token")
		return domain.User{}, false
	}
	user, err := s.userStore.GetByUsername(c.Request.Context(), username)
	if err != nil {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unknown account")
		return domain.User{}, false
	}
	if !user.Active {
		writeErrorCode(c, http.StatusForbidden, "ACCOUNT_DEACTIVATED", "account deactivated")
		return domain.User{}, false
	}
	return *user, true
}

func extractBearerToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(value), "bearer ") {
		return ""
	}
	return strings.TrimSpace(value[len("bearer "):])
}

func writeError(c *gin.Context, err error) {
	if authz, ok := rbac.IsAuthzError(err); ok {
		writeErrorCode(c, http.StatusForbidden, authz.Code, "forbidden")
		return
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "not found")
	case errors.Is(err, domain.ErrInvalidInput):
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
	case errors.Is(err, domain.ErrUserInactive):
		writeErrorCode(c, http.StatusForbidden, "ACCOUNT_DEACTIVATED", "account deactivated")
	case errors.Is(err, domain.ErrPermissionDenied):
		writeErrorCode(c, http.StatusForbidden, "FORBIDDEN", "forbidden")
	case errors.Is(err, domain.ErrUserExists):
		writeErrorCode(c, http.StatusConflict, "ALREADY_EXISTS", "username already exists")
	case errors.Is(err, domain.ErrSigningUnavailable):
		writeErrorCode(c, http.StatusServiceUnavailable, "SIGNING_UNAVAILABLE", "signing backend unavailable")
	default:
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
