package user

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"moodfeed/internal/common"
)

// Handler connects the auth and profile routes to UserService.
type Handler struct {
	userService UserService
	validator   *common.Validator
	log         *logrus.Logger
}

func NewHandler(userService UserService, v *common.Validator, log *logrus.Logger) *Handler {
	return &Handler{userService: userService, validator: v, log: log}
}

func (h *Handler) Register(r *mux.Router, auth *common.HTTPAuth) {
	a := r.PathPrefix("/api/auth").Subrouter()
	a.HandleFunc("/register", h.RegisterUser).Methods(http.MethodPost)
	a.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	a.Handle("/verify", auth.RequiredFunc(h.Current)).Methods(http.MethodGet)

	u := r.PathPrefix("/api/users").Subrouter()
	u.Handle("/current", auth.RequiredFunc(h.Current)).Methods(http.MethodGet)
	u.Handle("/update", auth.RequiredFunc(h.UpdateProfile)).Methods(http.MethodPut)
	u.Handle("/{id:[0-9]+}", auth.Optional(http.HandlerFunc(h.GetProfile))).Methods(http.MethodGet)
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := common.DecodeJSON(r, &in, h.validator); err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	res, err := h.userService.RegisterUser(r.Context(), in)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteCreated(w, "registration successful", res)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := common.DecodeJSON(r, &in, h.validator); err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	res, err := h.userService.LoginUser(r.Context(), in)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "login successful", res)
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	u, err := h.userService.CurrentUser(r.Context(), common.ViewerFrom(r.Context()))
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", u)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := common.PathID(r, "id")
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	u, err := h.userService.GetProfile(r.Context(), id)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "", u)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch UserPatch
	if err := common.DecodeJSON(r, &patch, h.validator); err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	viewer := common.ViewerFrom(r.Context())
	u, err := h.userService.UpdateProfile(r.Context(), viewer.UserID, patch)
	if err != nil {
		common.WriteError(w, h.log, err)
		return
	}
	common.WriteOK(w, "profile updated", u)
}
