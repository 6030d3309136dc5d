package authentication

import (
	"log/slog"
	"net/http"

	"talenttrack-backend/controllers/respond"
	"talenttrack-backend/services"
)

// Handler serves the /auth and /users routes.
type Handler struct {
	auth  *services.AuthService
	users *services.UserService
}

func NewHandler(auth *services.AuthService, users *services.UserService) *Handler {
	return &Handler{auth: auth, users: users}
}

// Register: регистрация с паролем и кодом восстановления
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if !respond.Decode(w, r, &in) {
		return
	}

	res, err := h.auth.Register(r.Context(), in)
	if err != nil {
		respond.FromError(w, r, err)
		return
	}

	slog.Info("user registered", "userId", res.User.ID)
	respond.JSON(w, http.StatusCreated, res)
}

// Login: вход с паролем и генерация JWT
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !respond.Decode(w, r, &in) {
		return
	}

	res, err := h.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, res)
}

// ResetPassword: смена пароля по коду восстановления, без старого пароля
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email       string `json:"email"`
		SafeCode    string `json:"safeCode"`
		NewPassword string `json:"newPassword"`
	}
	if !respond.Decode(w, r, &in) {
		return
	}

	if err := h.auth.ResetPassword(r.Context(), in.Email, in.SafeCode, in.NewPassword); err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, map[string]string{"message": "Password changed successfully"})
}
