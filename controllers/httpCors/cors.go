package httpCors

import (
	"log/slog"

	"github.com/rs/cors"
)

// CorsSettings builds the CORS wrapper for the given origins. Credentials are
// only allowed when the origin list is not the "*" wildcard.
func CorsSettings(origins []string) *cors.Cors {
	wildcard := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedOrigins:   origins,
		AllowCredentials: !wildcard,
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Authorization"},
		MaxAge:           600,
	})
	slog.Debug("cors configured", "origins", origins, "credentials", !wildcard)
	return c
}
