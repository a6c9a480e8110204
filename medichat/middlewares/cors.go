// medichat/middlewares/cors.go
package middlewares

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the configured origins with credentials, any method and any
// header.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
