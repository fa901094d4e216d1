package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"moodfeed/internal/chat/repository"
	"moodfeed/internal/chat/service"
	"moodfeed/internal/common"
)

type ChatHandler struct {
	chatService service.ChatService
	validator   *common.Validator
	log         *logrus.Logger
}

func NewChatHandler(chatService service.ChatService, v *common.Validator, log *logrus.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, validator: v, log: log}
}

// Register mounts the message routes. Every route requires a signed-in user.
func (h *ChatHandler) Register(r *mux.Router, auth *common.HTTPAuth) {
	s := r.PathPrefix("/api/messages").Subrouter()
	s.Handle("", auth.RequiredFunc(h.SendMessage)).Methods(http.MethodPost)
	s.Handle("", auth.RequiredFunc(h.Inbox)).Methods(http.MethodGet)
	s.Handle("/unread-count", auth.RequiredFunc(h.UnreadCount)).Methods(http.MethodGet)
	s.Handle("/conversation/{userId:[0-9]+}", auth.RequiredFunc(h.Conversation)).Methods(http.MethodGet)
	s.Handle("/{id:[0-9]+}", auth.RequiredFunc(h.GetMessage)).Methods(http.MethodGet)
	s.Handle("/{id:[0-9]+}", auth.RequiredFunc(h.DeleteMessage)).Methods(http.MethodDelete)
	s.Handle("/{id:[0-9]+}/read", auth.RequiredFunc(h.MarkRead)).Methods(http.MethodPut)
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var in service.SendInput
	if err := common.DecodeJSON(r, &in, h.validator); err != nil {
		common.WriteError(w, h.log, err)
		return
	}

	viewer := common.ViewerFrom(r.Context())
	msg, err := h.chatService.SendMessage(r.Context(), viewer.UserID, in)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteCreated(w, "message sent", msg)
}

func (h *ChatHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	window, err := common.QueryWindow(r, service.InboxPageSize)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	role := repository.Role(r.URL.Query().Get("type"))

	viewer := common.ViewerFrom(r.Context())
	page, err := h.chatService.Inbox(r.Context(), viewer.UserID, role, window)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", page)
}

func (h *ChatHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	otherID, err := common.PathID(r, "userId")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	window, err := common.QueryWindow(r, service.ConversationPageSize)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}

	viewer := common.ViewerFrom(r.Context())
	page, err := h.chatService.Conversation(r.Context(), viewer.UserID, otherID, window)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", page)
}

func (h *ChatHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	viewer := common.ViewerFrom(r.Context())
	msg, err := h.chatService.GetMessage(r.Context(), viewer.UserID, id)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", msg)
}

func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	viewer := common.ViewerFrom(r.Context())
	if err := h.chatService.MarkRead(r.Context(), viewer.UserID, id); err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "message marked read", nil)
}

func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	viewer := common.ViewerFrom(r.Context())
	if err := h.chatService.DeleteMessage(r.Context(), viewer.UserID, id); err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "message deleted", nil)
}

func (h *ChatHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	viewer := common.ViewerFrom(r.Context())
	n, err := h.chatService.UnreadCount(r.Context(), viewer.UserID)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", map[string]int64{"count": n})
}
