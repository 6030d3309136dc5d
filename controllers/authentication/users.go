package authentication

import (
	"net/http"

	"github.com/gorilla/mux"

	"talenttrack-backend/controllers/respond"
)

// ListUsers: все пользователи с заполненным именем, без паролей
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, list)
}

// RateUser: оценка другого пользователя, пересчет среднего рейтинга
func (h *Handler) RateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromContext(r.Context())
	targetID := mux.Vars(r)["id"]

	var in struct {
		Grade *int `json:"grade"`
	}
	if !respond.Decode(w, r, &in) {
		return
	}
	if in.Grade == nil {
		respond.Error(w, "grade is required", http.StatusBadRequest)
		return
	}

	u, err := h.users.Rate(r.Context(), actor, targetID, *in.Grade)
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, u)
}
