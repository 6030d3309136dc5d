package jobs

import (
	"net/http"

	"github.com/gorilla/mux"

	"talenttrack-backend/controllers/authentication"
	"talenttrack-backend/controllers/respond"
	jobmodel "talenttrack-backend/models/jobs"
	"talenttrack-backend/services"
)

type Handler struct {
	jobs *services.JobService
}

func NewHandler(jobs *services.JobService) *Handler {
	return &Handler{jobs: jobs}
}

// ListJobs: публичный список вакансий
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	list, err := h.jobs.List(r.Context())
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, list)
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobs.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, j)
}

// CreateJob: создатель вакансии берется из токена
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	actor, _ := authentication.UserFromContext(r.Context())

	var in jobmodel.Patch
	if !respond.Decode(w, r, &in) {
		return
	}

	j, err := h.jobs.Create(r.Context(), actor, in)
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, j)
}

func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	actor, _ := authentication.UserFromContext(r.Context())

	var patch jobmodel.Patch
	if !respond.Decode(w, r, &patch) {
		return
	}

	j, err := h.jobs.Update(r.Context(), actor, mux.Vars(r)["id"], patch)
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, j)
}

func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	actor, _ := authentication.UserFromContext(r.Context())
	if err := h.jobs.Delete(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, map[string]string{"message": "Job deleted"})
}

// ApplyJob: отклик на вакансию, создает контракт со статусом Applied
func (h *Handler) ApplyJob(w http.ResponseWriter, r *http.Request) {
	actor, _ := authentication.UserFromContext(r.Context())
	c, err := h.jobs.Apply(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, c)
}
