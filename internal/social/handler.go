package social

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"moodfeed/internal/common"
)

type SocialUsecase interface {
	Follow(ctx context.Context, actorID, targetID uint64) error
	Unfollow(ctx context.Context, actorID, targetID uint64) error
	FollowStatus(ctx context.Context, actorID, targetID uint64) (bool, error)
	UserStats(ctx context.Context, userID uint64) (*UserStats, error)
	Following(ctx context.Context, userID uint64, window common.PageWindow) (common.Paged[FollowedUser], error)
	Followers(ctx context.Context, userID uint64, window common.PageWindow) (common.Paged[FollowedUser], error)
}

type Handler struct {
	svc SocialUsecase
	log *logrus.Logger
}

func NewHandler(svc SocialUsecase, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Register(r *mux.Router, auth *common.HTTPAuth) {
	s := r.PathPrefix("/api/users/{id:[0-9]+}").Subrouter()
	s.Handle("/stats", auth.Optional(http.HandlerFunc(h.Stats))).Methods(http.MethodGet)
	s.Handle("/following", auth.Optional(http.HandlerFunc(h.Following))).Methods(http.MethodGet)
	s.Handle("/followers", auth.Optional(http.HandlerFunc(h.Followers))).Methods(http.MethodGet)
	s.Handle("/follow", auth.RequiredFunc(h.Follow)).Methods(http.MethodPost)
	s.Handle("/follow", auth.RequiredFunc(h.Unfollow)).Methods(http.MethodDelete)
	s.Handle("/follow-status", auth.RequiredFunc(h.FollowStatus)).Methods(http.MethodGet)
}

func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	targetID, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	viewer := common.ViewerFrom(r.Context())
	if err := h.svc.Follow(r.Context(), viewer.UserID, targetID); err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "followed", nil)
}

func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	targetID, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	viewer := common.ViewerFrom(r.Context())
	if err := h.svc.Unfollow(r.Context(), viewer.UserID, targetID); err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "unfollowed", nil)
}

func (h *Handler) FollowStatus(w http.ResponseWriter, r *http.Request) {
	targetID, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	viewer := common.ViewerFrom(r.Context())
	following, err := h.svc.FollowStatus(r.Context(), viewer.UserID, targetID)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", map[string]bool{"isFollowing": following})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	stats, err := h.svc.UserStats(r.Context(), userID)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", stats)
}

func (h *Handler) Following(w http.ResponseWriter, r *http.Request) {
	h.listEdges(w, r, h.svc.Following)
}

func (h *Handler) Followers(w http.ResponseWriter, r *http.Request) {
	h.listEdges(w, r, h.svc.Followers)
}

func (h *Handler) listEdges(w http.ResponseWriter, r *http.Request, list func(context.Context, uint64, common.PageWindow) (common.Paged[FollowedUser], error)) {
	userID, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	window, err := common.QueryWindow(r, FollowPageSize)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	page, err := list(r.Context(), userID, window)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", page)
}
