package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Warn("failed to write response")
	}
}

func WriteOK(w http.ResponseWriter, message string, data interface{}) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func WriteCreated(w http.ResponseWriter, message string, data interface{}) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// WriteError maps err onto its HTTP status. Internal details are logged, not
// returned.
func WriteError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	var de *Error
	if !errors.As(err, &de) {
		de = &Error{Kind: KindInternal, Message: "internal server error", Err: err}
	}

	message := de.Message
	if de.Kind == KindInternal {
		if log != nil {
			log.WithError(err).Error("request failed")
		}
		if message == "" {
			message = "internal server error"
		}
	}
	WriteJSON(w, de.HTTPStatus(), Envelope{Success: false, Message: message})
}

// DecodeJSON reads a JSON body into dst and runs the validator when one is
// given.
func DecodeJSON(r *http.Request, dst interface{}, v *Validator) error {
	if r.Body == nil {
		return Validation("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return Validation("invalid request body")
	}
	if v != nil {
		return v.Struct(dst)
	}
	return nil
}

// PathID parses a positive numeric route variable.
func PathID(r *http.Request, name string) (uint64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, Validation("invalid %s", name)
	}
	return id, nil
}

// QueryInt reads an optional integer query parameter. Absent values yield def.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, Validation("%s must be an integer", name)
	}
	return n, nil
}

// MaxPageSize caps pageSize on every listing.
const MaxPageSize = 100

// QueryWindow reads page and pageSize. Page must be >= 1 and pageSize within
// [1, MaxPageSize] when present.
func QueryWindow(r *http.Request, defaultSize int) (PageWindow, error) {
	page, err := QueryInt(r, "page", 1)
	if err != nil {
		return PageWindow{}, err
	}
	size, err := QueryInt(r, "pageSize", defaultSize)
	if err != nil {
		return PageWindow{}, err
	}
	if page < 1 {
		return PageWindow{}, Validation("page must be at least 1")
	}
	if size < 1 || size > MaxPageSize {
		return PageWindow{}, Validation("pageSize must be between 1 and %d", MaxPageSize)
	}
	return NewPageWindow(page, size, defaultSize), nil
}

func QueryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}
