package messages

import (
	"net/http"

	"github.com/gorilla/mux"

	"talenttrack-backend/controllers/authentication"
	"talenttrack-backend/controllers/respond"
	messagemodel "talenttrack-backend/models/messages"
	"talenttrack-backend/services"
)

type Handler struct {
	messages *services.MessageService
}

func NewHandler(messages *services.MessageService) *Handler {
	return &Handler{messages: messages}
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	list, err := h.messages.List(r.Context())
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, list)
}

// ListByReceiver: входящие сообщения пользователя
func (h *Handler) ListByReceiver(w http.ResponseWriter, r *http.Request) {
	list, err := h.messages.ListByReceiver(r.Context(), mux.Vars(r)["receiverId"])
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, list)
}

func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	m, err := h.messages.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, m)
}

func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	actor, _ := authentication.UserFromContext(r.Context())

	var in services.NewMessage
	if !respond.Decode(w, r, &in) {
		return
	}

	m, err := h.messages.Create(r.Context(), actor, in)
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, m)
}

func (h *Handler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	actor, _ := authentication.UserFromContext(r.Context())

	var patch messagemodel.Patch
	if !respond.Decode(w, r, &patch) {
		return
	}

	m, err := h.messages.Update(r.Context(), actor, mux.Vars(r)["id"], patch)
	if err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, m)
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	actor, _ := authentication.UserFromContext(r.Context())
	if err := h.messages.Delete(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		respond.FromError(w, r, err)
		return
	}
	respond.OK(w, map[string]string{"message": "Message deleted"})
}
