package authentication

import (
	"net/http"

	"talenttrack-backend/controllers/respond"
	"talenttrack-backend/models/users"
)

// GetProfile: профиль текущего пользователя по токену
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromContext(r.Context())
	u, err := h.users.Profile(r.Context(), actor)
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, u)
}

// UpdateProfile: обновление полей профиля текущего пользователя
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromContext(r.Context())

	var patch users.Profile
	if !respond.Decode(w, r, &patch) {
		return
	}

	u, err := h.users.UpdateProfile(r.Context(), actor, patch)
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, u)
}
