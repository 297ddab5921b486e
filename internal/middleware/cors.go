// internal/middleware/cors.go
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func CORS(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			"Accept-Language", "X-Client-Email", "Stripe-Signature",
		},
		ExposeHeaders: []string{
			"Content-Length", "Content-Disposition", "X-Total-Count", "X-Page", "X-Per-Page", "X-Total-Pages",
			"X-Rendition", "X-Preview-Watermark", "X-Preview-Time-Limit",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
