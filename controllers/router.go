package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"talenttrack-backend/controllers/authentication"
	"talenttrack-backend/controllers/contracts"
	"talenttrack-backend/controllers/httpCors"
	"talenttrack-backend/controllers/jobs"
	"talenttrack-backend/controllers/messages"
	"talenttrack-backend/controllers/respond"
	"talenttrack-backend/services"
)

// Deps is everything the router needs.
type Deps struct {
	Auth      *services.AuthService
	Users     *services.UserService
	Jobs      *services.JobService
	Contracts *services.ContractService
	Messages  *services.MessageService

	BodyLimit   int64
	CORSOrigins []string
	// Health reports storage reachability; nil means always healthy.
	Health func(ctx context.Context) error
}

// NewRouter wires every route under /api plus /health.
func NewRouter(d Deps) http.Handler {
	authH := authentication.NewHandler(d.Auth, d.Users)
	jobH := jobs.NewHandler(d.Jobs)
	contractH := contracts.NewHandler(d.Contracts)
	messageH := messages.NewHandler(d.Messages)
	protect := authH.Protect

	r := mux.NewRouter()
	r.HandleFunc("/health", health(d.Health)).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", authH.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authH.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/reset-password", authH.ResetPassword).Methods(http.MethodPost)

	api.HandleFunc("/jobs", jobH.ListJobs).Methods(http.MethodGet)
	api.Handle("/jobs", protect(jobH.CreateJob)).Methods(http.MethodPost)
	api.HandleFunc("/jobs/{id}", jobH.GetJob).Methods(http.MethodGet)
	api.Handle("/jobs/{id}", protect(jobH.UpdateJob)).Methods(http.MethodPut)
	api.Handle("/jobs/{id}", protect(jobH.DeleteJob)).Methods(http.MethodDelete)
	api.Handle("/jobs/{id}/apply", protect(jobH.ApplyJob)).Methods(http.MethodPost)

	// /contracts/visible has to be registered before /contracts/{id}
	api.Handle("/contracts", protect(contractH.ListContracts)).Methods(http.MethodGet)
	api.Handle("/contracts", protect(contractH.CreateContract)).Methods(http.MethodPost)
	api.Handle("/contracts/visible", protect(contractH.ListVisible)).Methods(http.MethodGet)
	api.Handle("/contracts/{id}", protect(contractH.GetContract)).Methods(http.MethodGet)
	api.Handle("/contracts/{id}", protect(contractH.UpdateContract)).Methods(http.MethodPut)
	api.Handle("/contracts/{id}", protect(contractH.DeleteContract)).Methods(http.MethodDelete)
	api.Handle("/contracts/{id}/hide", protect(contractH.HideContract())).Methods(http.MethodPost)
	api.Handle("/contracts/{id}/approve", protect(contractH.ApproveContract())).Methods(http.MethodPost)
	api.Handle("/contracts/{id}/reject", protect(contractH.RejectContract())).Methods(http.MethodPost)
	api.Handle("/contracts/{id}/cancel", protect(contractH.CancelContract())).Methods(http.MethodPost)

	api.Handle("/messages", protect(messageH.ListMessages)).Methods(http.MethodGet)
	api.Handle("/messages", protect(messageH.CreateMessage)).Methods(http.MethodPost)
	api.Handle("/messages/receiver/{receiverId}", protect(messageH.ListByReceiver)).Methods(http.MethodGet)
	api.Handle("/messages/{id}", protect(messageH.GetMessage)).Methods(http.MethodGet)
	api.Handle("/messages/{id}", protect(messageH.UpdateMessage)).Methods(http.MethodPut)
	api.Handle("/messages/{id}", protect(messageH.DeleteMessage)).Methods(http.MethodDelete)

	api.Handle("/users", protect(authH.ListUsers)).Methods(http.MethodGet)
	api.Handle("/users/profile", protect(authH.GetProfile)).Methods(http.MethodGet)
	api.Handle("/users/profile", protect(authH.UpdateProfile)).Methods(http.MethodPut)
	api.Handle("/users/{id}/rate", protect(authH.RateUser)).Methods(http.MethodPost)

	// r.Use only wraps matched routes
	r.NotFoundHandler = logRequests(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, "route not found", http.StatusNotFound)
	}))
	r.MethodNotAllowedHandler = logRequests(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}))

	r.Use(limitBody(d.BodyLimit), logRequests)
	return httpCors.CorsSettings(d.CORSOrigins).Handler(r)
}

func health(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		respond.OK(w, map[string]string{"status": "ok"})
	}
}

func limitBody(limit int64) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				respond.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
