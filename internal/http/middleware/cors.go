package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the configured origins with credentials. "*" allows every
// origin; it is matched through AllowOriginFunc so the request origin is
// echoed back, since browsers reject a literal wildcard with credentials.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowCredentials: true,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader, "X-Analysis-Id", "X-Credits-Remaining"},
		MaxAge:        10 * time.Minute,
	}

	switch {
	case slices.Contains(origins, "*"):
		cfg.AllowOriginFunc = func(string) bool { return true }
	case len(origins) == 0:
		cfg.AllowOriginFunc = func(string) bool { return false }
	default:
		cfg.AllowOrigins = origins
	}

	return cors.New(cfg)
}
