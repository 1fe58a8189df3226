package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"sharebite/internal/config"
	"sharebite/internal/domain"
	"sharebite/internal/logger"
	"sharebite/internal/metrics"
	"sharebite/internal/security"
)

type AuthMiddleware struct {
	tokenManager security.TokenManager
}

func NewAuthMiddleware(tm security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm}
}

// Handler authenticates and authorizes requests according to the security
// level of the matched route.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		level := config.GetSecurityLevel(routeName(r))

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token := extractToken(r)
		if token == "" {
			writeError(w, domain.NewAuthenticationError("Access denied. No token provided."))
			return
		}

		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			if err == security.ErrExpiredToken {
				writeError(w, domain.NewAuthenticationError("Session expired. Please log in again."))
				return
			}
			writeError(w, domain.NewAuthenticationError("Invalid token"))
			return
		}

		if level == config.SecurityAdmin && claims.Role != domain.RoleAdmin {
			writeError(w, domain.NewAuthorizationError("Access denied. Admin privileges required."))
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func extractToken(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	// Remove Bearer prefix if present
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if name := route.GetName(); name != "" {
			return name
		}
	}
	return r.Method + " " + r.URL.Path
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// ObserveMiddleware logs every request and records it in the request
// metrics.
func ObserveMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := routeName(r)
		metrics.ObserveRequest(route, r.Method, strconv.Itoa(rec.status), start)
		logger.HTTPRequest(r.Method, route, rec.status, time.Since(start))
	})
}
