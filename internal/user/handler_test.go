package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodfeed/internal/common"
	"moodfeed/internal/dbsql"
	"moodfeed/internal/user"
	"moodfeed/internal/user/mocks"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupHandler(t *testing.T) (*mux.Router, *mocks.MockUserService, string) {
	ctrl := gomock.NewController(t)
	mockSvc := mocks.NewMockUserService(ctrl)
	log, _ := test.NewNullLogger()
	tokens := common.NewTokenManager("test-secret", time.Hour, "moodfeed")

	r := mux.NewRouter()
	user.NewHandler(mockSvc, common.NewValidator(), log).Register(r, common.NewHTTPAuth(tokens))

	token, err := tokens.GenerateToken(2, "alice")
	require.NoError(t, err)
	return r, mockSvc, token
}

func do(t *testing.T, r http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestHandler_Register(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		setup    func(*mocks.MockUserService)
		wantCode int
	}{
		{
			name: "happy path",
			body: `{"username":"alice","password":"pwgood"}`,
			setup: func(m *mocks.MockUserService) {
				m.EXPECT().RegisterUser(gomock.Any(), user.RegisterInput{Username: "alice", Password: "pwgood"}).
					Return(&user.AuthResult{User: &dbsql.User{ID: 2, Username: "alice"}, Token: "tok"}, nil)
			},
			wantCode: http.StatusCreated,
		},
		{
			name:     "missing password",
			body:     `{"username":"alice"}`,
			setup:    func(*mocks.MockUserService) {},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "duplicate username",
			body: `{"username":"bob","password":"pwgood"}`,
			setup: func(m *mocks.MockUserService) {
				m.EXPECT().RegisterUser(gomock.Any(), gomock.Any()).Return(nil, common.Conflict(`username "bob" already exists`))
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, mockSvc, _ := setupHandler(t)
			tc.setup(mockSvc)

			rec, env := do(t, r, http.MethodPost, "/api/auth/register", "", tc.body)
			require.Equal(t, tc.wantCode, rec.Code)
			if tc.wantCode != http.StatusCreated {
				assert.False(t, env.Success)
				return
			}
			var res struct {
				User  map[string]interface{} `json:"user"`
				Token string                 `json:"token"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &res))
			assert.Equal(t, "tok", res.Token)
			assert.NotContains(t, res.User, "passwordHash")
		})
	}
}

func TestHandler_Login(t *testing.T) {
	r, mockSvc, _ := setupHandler(t)
	mockSvc.EXPECT().LoginUser(gomock.Any(), user.LoginInput{Username: "alice", Password: "bad"}).
		Return(nil, common.Unauthorized("invalid username or password"))

	rec, env := do(t, r, http.MethodPost, "/api/auth/login", "", `{"username":"alice","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid username or password", env.Message)
}

func TestHandler_CurrentAndVerify(t *testing.T) {
	r, mockSvc, token := setupHandler(t)

	rec, _ := do(t, r, http.MethodGet, "/api/users/current", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	mockSvc.EXPECT().CurrentUser(gomock.Any(), common.Viewer{UserID: 2, Username: "alice", Authenticated: true}).
		Return(&dbsql.User{ID: 2, Username: "alice"}, nil).Times(2)

	for _, path := range []string{"/api/users/current", "/api/auth/verify"} {
		rec, env := do(t, r, http.MethodGet, path, token, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, string(env.Data), `"username":"alice"`)
	}
}

func TestHandler_GetProfile(t *testing.T) {
	r, mockSvc, _ := setupHandler(t)
	mockSvc.EXPECT().GetProfile(gomock.Any(), uint64(9)).Return(nil, common.NotFound("user 9 not found"))
	mockSvc.EXPECT().GetProfile(gomock.Any(), uint64(2)).Return(&dbsql.User{ID: 2, Username: "alice"}, nil)

	rec, _ := do(t, r, http.MethodGet, "/api/users/9", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, r, http.MethodGet, "/api/users/2", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_UpdateProfile(t *testing.T) {
	r, mockSvc, token := setupHandler(t)
	mockSvc.EXPECT().UpdateProfile(gomock.Any(), uint64(2), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uint64, p user.UserPatch) (*dbsql.User, error) {
			require.NotNil(t, p.Nickname)
			assert.Nil(t, p.AvatarURL)
			return &dbsql.User{ID: 2, Nickname: *p.Nickname}, nil
		})

	rec, env := do(t, r, http.MethodPut, "/api/users/update", token, `{"nickname":"Ally"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "profile updated", env.Message)

	rec, _ = do(t, r, http.MethodPut, "/api/users/update", token, `{"nickname":"`+strings.Repeat("x", 101)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
