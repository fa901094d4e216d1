package feed

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"moodfeed/internal/common"
)

type FeedUsecase interface {
	ListPosts(ctx context.Context, q ListQuery, viewer common.Viewer) (common.Paged[PostView], error)
	ListUserPosts(ctx context.Context, ownerID uint64, includePrivate bool, window common.PageWindow, viewer common.Viewer) (common.Paged[PostView], error)
	Latest(ctx context.Context, window common.PageWindow, viewer common.Viewer) (common.Paged[PostView], error)
	Trending(ctx context.Context, r TimeRange, window common.PageWindow, viewer common.Viewer) (common.Paged[PostView], error)
	Search(ctx context.Context, q SearchQuery, viewer common.Viewer) (common.Paged[PostView], error)

	CreatePost(ctx context.Context, authorID uint64, in PostInput) (*PostView, error)
	GetPost(ctx context.Context, id uint64, viewer common.Viewer) (*PostView, error)
	UpdatePost(ctx context.Context, actorID, id uint64, patch PostPatch) (*PostView, error)
	DeletePost(ctx context.Context, actorID, id uint64) error

	LikePost(ctx context.Context, actorID, postID uint64) error
	UnlikePost(ctx context.Context, actorID, postID uint64) error

	SquareStats(ctx context.Context) (*SquareStats, error)
}

// FeedHandlers serves posts, likes and the square over HTTP.
type FeedHandlers struct {
	FeedSvc   FeedUsecase
	validator *common.Validator
	log       *logrus.Logger
}

func NewFeedHandlers(svc FeedUsecase, v *common.Validator, log *logrus.Logger) *FeedHandlers {
	return &FeedHandlers{FeedSvc: svc, validator: v, log: log}
}

func (h *FeedHandlers) Register(r *mux.Router, auth *common.HTTPAuth) {
	posts := r.PathPrefix("/api/posts").Subrouter()
	posts.Handle("", auth.Optional(http.HandlerFunc(h.ListPosts))).Methods(http.MethodGet)
	posts.Handle("", auth.RequiredFunc(h.CreatePost)).Methods(http.MethodPost)
	posts.Handle("/{id:[0-9]+}", auth.Optional(http.HandlerFunc(h.GetPost))).Methods(http.MethodGet)
	posts.Handle("/{id:[0-9]+}", auth.RequiredFunc(h.UpdatePost)).Methods(http.MethodPut)
	posts.Handle("/{id:[0-9]+}", auth.RequiredFunc(h.DeletePost)).Methods(http.MethodDelete)
	posts.Handle("/{id:[0-9]+}/like", auth.RequiredFunc(h.LikePost)).Methods(http.MethodPost)
	posts.Handle("/{id:[0-9]+}/unlike", auth.RequiredFunc(h.UnlikePost)).Methods(http.MethodDelete)

	square := r.PathPrefix("/api/square").Subrouter()
	square.Handle("/stats", http.HandlerFunc(h.SquareStats)).Methods(http.MethodGet)
	square.Handle("/trending", auth.Optional(http.HandlerFunc(h.Trending))).Methods(http.MethodGet)
	square.Handle("/latest", auth.Optional(http.HandlerFunc(h.Latest))).Methods(http.MethodGet)
	square.Handle("/search", auth.Optional(http.HandlerFunc(h.Search))).Methods(http.MethodGet)

	r.Handle("/api/users/{id:[0-9]+}/posts", auth.Optional(http.HandlerFunc(h.ListUserPosts))).Methods(http.MethodGet)
}

func queryMood(r *http.Request) (string, error) {
	mood := r.URL.Query().Get("moodType")
	if mood != "" && !common.Mood(mood).IsValid() {
		return "", common.Validation("invalid moodType %q", mood)
	}
	return mood, nil
}

func (h *FeedHandlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	window, err := common.QueryWindow(r, common.DefaultPageSize)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	mood, err := queryMood(r)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	var ownerID uint64
	if raw := r.URL.Query().Get("userId"); raw != "" {
		id, err := common.QueryInt(r, "userId", 0)
		if err != nil || id < 1 {
			common.WriteError(w, h.log, common.Validation("invalid userId"))
			return
		}
		ownerID = uint64(id)
	}

	q := ListQuery{OwnerID: ownerID, Mood: mood, Keyword: r.URL.Query().Get("keyword"), Window: window}
	page, err := h.FeedSvc.ListPosts(r.Context(), q, common.ViewerFrom(r.Context()))
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", page)
}

func (h *FeedHandlers) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	window, err := common.QueryWindow(r, common.DefaultPageSize)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}

	viewer := common.ViewerFrom(r.Context())
	page, err := h.FeedSvc.ListUserPosts(r.Context(), ownerID, common.QueryBool(r, "includePrivate"), window, viewer)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", page)
}

func (h *FeedHandlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in PostInput
	if err := common.DecodeJSON(r, &in, h.validator); err != nil {
		common.WriteError(w, h.log, err)
		return
	}

	viewer := common.ViewerFrom(r.Context())
	post, err := h.FeedSvc.CreatePost(r.Context(), viewer.UserID, in)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteCreated(w, "post created", post)
}

func (h *FeedHandlers) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	post, err := h.FeedSvc.GetPost(r.Context(), id, common.ViewerFrom(r.Context()))
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", post)
}

func (h *FeedHandlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	var patch PostPatch
	if err := common.DecodeJSON(r, &patch, h.validator); err != nil {
		common.WriteError(w, h.log, err)
		return
	}

	viewer := common.ViewerFrom(r.Context())
	post, err := h.FeedSvc.UpdatePost(r.Context(), viewer.UserID, id, patch)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "post updated", post)
}

func (h *FeedHandlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	viewer := common.ViewerFrom(r.Context())
	if err := h.FeedSvc.DeletePost(r.Context(), viewer.UserID, id); err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "post deleted", nil)
}

func (h *FeedHandlers) LikePost(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	viewer := common.ViewerFrom(r.Context())
	if err := h.FeedSvc.LikePost(r.Context(), viewer.UserID, id); err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "post liked", nil)
}

func (h *FeedHandlers) UnlikePost(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	viewer := common.ViewerFrom(r.Context())
	if err := h.FeedSvc.UnlikePost(r.Context(), viewer.UserID, id); err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "like removed", nil)
}

func (h *FeedHandlers) SquareStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.FeedSvc.SquareStats(r.Context())
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", stats)
}

func (h *FeedHandlers) Trending(w http.ResponseWriter, r *http.Request) {
	window, err := common.QueryWindow(r, common.DefaultPageSize)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	rng := TimeRange(r.URL.Query().Get("timeRange"))
	switch rng {
	case "", RangeDay, RangeWeek, RangeMonth:
	default:
		common.WriteError(w, h.log, common.Validation("invalid timeRange %q", rng))
		return
	}

	page, err := h.FeedSvc.Trending(r.Context(), rng, window, common.ViewerFrom(r.Context()))
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", page)
}

func (h *FeedHandlers) Latest(w http.ResponseWriter, r *http.Request) {
	window, err := common.QueryWindow(r, common.DefaultPageSize)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	page, err := h.FeedSvc.Latest(r.Context(), window, common.ViewerFrom(r.Context()))
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", page)
}

func (h *FeedHandlers) Search(w http.ResponseWriter, r *http.Request) {
	window, err := common.QueryWindow(r, common.DefaultPageSize)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	mood, err := queryMood(r)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	sort, err := ParseSort(r.URL.Query().Get("sortBy"))
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}

	q := SearchQuery{
		Keyword:  r.URL.Query().Get("keyword"),
		Mood:     mood,
		Location: r.URL.Query().Get("location"),
		Sort:     sort,
		Window:   window,
	}
	page, err := h.FeedSvc.Search(r.Context(), q, common.ViewerFrom(r.Context()))
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", page)
}
