package thread

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"moodfeed/internal/common"
)

type ThreadUsecase interface {
	ListComments(ctx context.Context, postID uint64, window common.PageWindow, viewer common.Viewer) (common.Paged[Thread], error)
	AddComment(ctx context.Context, actorID, postID uint64, in CommentInput) (*CommentView, error)
	CommentDetail(ctx context.Context, id uint64, viewer common.Viewer) (*CommentView, error)
	DeleteComment(ctx context.Context, actorID, id uint64) error
}

type Handler struct {
	svc       ThreadUsecase
	validator *common.Validator
	log       *logrus.Logger
}

func NewHandler(svc ThreadUsecase, v *common.Validator, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, validator: v, log: log}
}

func (h *Handler) Register(r *mux.Router, auth *common.HTTPAuth) {
	s := r.PathPrefix("/api/comments").Subrouter()
	s.Handle("/detail/{id:[0-9]+}", auth.Optional(http.HandlerFunc(h.Detail))).Methods(http.MethodGet)
	s.Handle("/{postId:[0-9]+}", auth.Optional(http.HandlerFunc(h.List))).Methods(http.MethodGet)
	s.Handle("/{postId:[0-9]+}", auth.RequiredFunc(h.Add)).Methods(http.MethodPost)
	s.Handle("/{id:[0-9]+}", auth.RequiredFunc(h.Delete)).Methods(http.MethodDelete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	postID, err := common.PathID(r, "postId")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	window, err := common.QueryWindow(r, common.DefaultPageSize)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}

	page, err := h.svc.ListComments(r.Context(), postID, window, common.ViewerFrom(r.Context()))
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", page)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	postID, err := common.PathID(r, "postId")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	var in CommentInput
	if err := common.DecodeJSON(r, &in, h.validator); err != nil {
		common.WriteError(w, h.log, err)
		return
	}

	viewer := common.ViewerFrom(r.Context())
	c, err := h.svc.AddComment(r.Context(), viewer.UserID, postID, in)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteCreated(w, "comment added", c)
}

func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	c, err := h.svc.CommentDetail(r.Context(), id, common.ViewerFrom(r.Context()))
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", c)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	viewer := common.ViewerFrom(r.Context())
	if err := h.svc.DeleteComment(r.Context(), viewer.UserID, id); err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "comment deleted", nil)
}
