package contracts

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"talenttrack-backend/controllers/authentication"
	"talenttrack-backend/controllers/respond"
	contractmodel "talenttrack-backend/models/contracts"
	"talenttrack-backend/models/users"
	"talenttrack-backend/services"
)

type Handler struct {
	contracts *services.ContractService
}

func NewHandler(contracts *services.ContractService) *Handler {
	return &Handler{contracts: contracts}
}

// ListContracts returns every contract, hidden ones included.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	list, err := h.contracts.List(r.Context())
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, list)
}

// ListVisible returns only the contracts the caller has not hidden.
func (h *Handler) ListVisible(w http.ResponseWriter, r *http.Request) {
	actor, _ := authentication.UserFromContext(r.Context())
	list, err := h.contracts.ListVisible(r.Context(), actor)
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, list)
}

func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	c, err := h.contracts.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, c)
}

func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	actor, _ := authentication.UserFromContext(r.Context())

	var in services.NewContract
	if !respond.Decode(w, r, &in) {
		return
	}

	c, err := h.contracts.Create(r.Context(), actor, in)
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	actor, _ := authentication.UserFromContext(r.Context())

	var patch contractmodel.Patch
	if !respond.Decode(w, r, &patch) {
		return
	}

	c, err := h.contracts.Update(r.Context(), actor, mux.Vars(r)["id"], patch)
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, c)
}

func (h *Handler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	actor, _ := authentication.UserFromContext(r.Context())
	if err := h.contracts.Delete(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, map[string]string{"message": "Contract deleted"})
}

type action func(ctx context.Context, actor *users.User, id string) (*contractmodel.Contract, error)

// run adapts the single-id contract actions (hide, approve, reject, cancel).
func run(fn action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := authentication.UserFromContext(r.Context())
		c, err := fn(r.Context(), actor, mux.Vars(r)["id"])
		if err != nil {
			respond.FromError(w, r, err)
			return
		}
		respond.OK(w, c)
	}
}

func (h *Handler) HideContract() http.HandlerFunc    { return run(h.contracts.Hide) }
func (h *Handler) ApproveContract() http.HandlerFunc { return run(h.contracts.Approve) }
func (h *Handler) RejectContract() http.HandlerFunc  { return run(h.contracts.Reject) }
func (h *Handler) CancelContract() http.HandlerFunc  { return run(h.contracts.Cancel) }
