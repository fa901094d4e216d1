package common

import (
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// HTTPAuth resolves bearer tokens into a Viewer on the request context.
type HTTPAuth struct {
	tokens *TokenManager
}

func NewHTTPAuth(tokens *TokenManager) *HTTPAuth {
	return &HTTPAuth{tokens: tokens}
}

func (a *HTTPAuth) viewer(r *http.Request) (Viewer, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Anonymous(), Unauthorized("access token is missing")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return Anonymous(), Unauthorized("invalid authorization header")
	}
	claims, err := a.tokens.ValidToken(parts[1])
	if err != nil {
		return Anonymous(), Unauthorized("invalid or expired access token")
	}
	return Viewer{UserID: claims.UserID, Username: claims.Username, Authenticated: true}, nil
}

// Optional attaches the viewer when a valid token is sent and continues
// anonymously otherwise.
func (a *HTTPAuth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, _ := a.viewer(r)
		next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), v)))
	})
}

// Required rejects requests without a valid token.
func (a *HTTPAuth) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, err := a.viewer(r)
		if err != nil {
			WriteError(w, nil, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), v)))
	})
}

// RequiredFunc is Required for a single handler function.
func (a *HTTPAuth) RequiredFunc(fn http.HandlerFunc) http.Handler {
	return a.Required(fn)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request.
func RequestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			}).Info("http request")
		})
	}
}

// CORS allows browser clients from any origin.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
