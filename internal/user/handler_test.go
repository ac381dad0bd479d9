package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(AuthResult), args.Error(1)
}

func (m *MockService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(AuthResult), args.Error(1)
}

func (m *MockService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockService) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockService) ListUsers(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockService) AddUser(ctx context.Context, in AddUserInput) (User, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockService) UpdateUser(ctx context.Context, actorID, targetID uuid.UUID, in UpdateUserInput) (User, error) {
	args := m.Called(ctx, actorID, targetID, in)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockService) DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error {
	return m.Called(ctx, actorID, targetID).Error(0)
}

func asAdmin(r *http.Request, id uuid.UUID) *http.Request {
	return r.WithContext(utils.SetUserContext(r.Context(), id, utils.RoleAdmin))
}

func withUserID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func readResponse(t *testing.T, rr *httptest.ResponseRecorder) response {
	t.Helper()
	var res response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	return res
}

func TestHandler_Register(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc)
		in := RegisterInput{Name: "Sam", Email: "sam@example.com", Password: "secret1"}
		svc.On("Register", mock.Anything, in).Return(AuthResult{
			User:         User{Email: in.Email, Password: "hashed"},
			AccessToken:  "access",
			RefreshToken: "refresh",
		}, nil).Once()

		body := `{"name":"Sam","email":"sam@example.com","password":"secret1"}`
		rr := httptest.NewRecorder()
		h.Register(rr, httptest.NewRequest(http.MethodPost, "/users/register", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rr.Code)
		res := readResponse(t, rr)
		assert.Equal(t, utils.StatusSuccess, res.Status)
		assert.NotContains(t, string(res.Data), "hashed")

		var got AuthResult
		require.NoError(t, json.Unmarshal(res.Data, &got))
		assert.Equal(t, "access", got.AccessToken)
		assert.Equal(t, "refresh", got.RefreshToken)
		svc.AssertExpectations(t)
	})

	t.Run("UserExists", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc)
		svc.On("Register", mock.Anything, mock.Anything).Return(AuthResult{}, ErrUserExists).Once()

		rr := httptest.NewRecorder()
		h.Register(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c"}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "user already exists", readResponse(t, rr).Message)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc)

		rr := httptest.NewRecorder()
		h.Register(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("nope")))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "invalid request body", readResponse(t, rr).Message)
		svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})
}

func TestHandler_Login(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc)
		svc.On("Login", mock.Anything, LoginInput{Email: "sam@example.com", Password: "secret1"}).
			Return(AuthResult{AccessToken: "access"}, nil).Once()

		rr := httptest.NewRecorder()
		h.Login(rr, httptest.NewRequest(http.MethodPost, "/",
			strings.NewReader(`{"email":"sam@example.com","password":"secret1"}`)))

		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("BadCredentials", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc)
		svc.On("Login", mock.Anything, mock.Anything).Return(AuthResult{}, ErrInvalidCredentials).Once()

		rr := httptest.NewRecorder()
		h.Login(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"x@y.z","password":"nope"}`)))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "invalid email or password", readResponse(t, rr).Message)
	})
}

func TestHandler_RefreshToken(t *testing.T) {
	t.Run("Refreshed", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc)
		svc.On("RefreshToken", mock.Anything, "r-token").Return("new-access", nil).Once()

		rr := httptest.NewRecorder()
		h.RefreshToken(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"refreshToken":"r-token"}`)))

		assert.Equal(t, http.StatusOK, rr.Code)
		var data map[string]string
		require.NoError(t, json.Unmarshal(readResponse(t, rr).Data, &data))
		assert.Equal(t, "new-access", data["accessToken"])
	})

	t.Run("Missing", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc)
		svc.On("RefreshToken", mock.Anything, "").Return("", ErrRefreshTokenRequired).Once()

		rr := httptest.NewRecorder()
		h.RefreshToken(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandler_Profile(t *testing.T) {
	userID := uuid.New()
	svc := new(MockService)
	h := NewHandler(svc)
	svc.On("GetByID", mock.Anything, userID).Return(User{ID: userID, Name: "Sam"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	req = req.WithContext(utils.SetUserContext(req.Context(), userID, utils.RoleCustomer))
	rr := httptest.NewRecorder()
	h.Profile(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var data map[string]User
	require.NoError(t, json.Unmarshal(readResponse(t, rr).Data, &data))
	assert.Equal(t, "Sam", data["user"].Name)
}

func TestHandler_AdminUsers(t *testing.T) {
	adminID := uuid.New()
	targetID := uuid.New()

	t.Run("List", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc)
		svc.On("ListUsers", mock.Anything).Return([]User{{Name: "a"}, {Name: "b"}}, nil).Once()

		rr := httptest.NewRecorder()
		h.ListUsers(rr, asAdmin(httptest.NewRequest(http.MethodGet, "/", nil), adminID))

		assert.Equal(t, http.StatusOK, rr.Code)
		var data struct {
			Results int `json:"results"`
		}
		require.NoError(t, json.Unmarshal(readResponse(t, rr).Data, &data))
		assert.Equal(t, 2, data.Results)
	})

	t.Run("AddWithRole", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc)
		svc.On("AddUser", mock.Anything, mock.MatchedBy(func(in AddUserInput) bool {
			return in.Email == "ops@example.com" && in.Role == utils.RoleAdmin
		})).Return(User{Email: "ops@example.com", Role: utils.RoleAdmin}, nil).Once()

		body := `{"name":"Ops","email":"ops@example.com","password":"secret1","role":"admin"}`
		rr := httptest.NewRecorder()
		h.AddUser(rr, asAdmin(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), adminID))

		assert.Equal(t, http.StatusCreated, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("UpdateBadID", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc)

		req := withUserID(asAdmin(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{}`)), adminID), "abc")
		rr := httptest.NewRecorder()
		h.UpdateUser(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "invalid user id", readResponse(t, rr).Message)
		svc.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UpdatePassesActorAndTarget", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc)
		role := utils.RoleAdmin
		svc.On("UpdateUser", mock.Anything, adminID, targetID, UpdateUserInput{Role: &role}).
			Return(User{ID: targetID, Role: role}, nil).Once()

		req := withUserID(asAdmin(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"role":"admin"}`)), adminID), targetID.String())
		rr := httptest.NewRecorder()
		h.UpdateUser(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("DeleteSelf", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc)
		svc.On("DeleteUser", mock.Anything, adminID, adminID).Return(ErrDeleteSelf).Once()

		req := withUserID(asAdmin(httptest.NewRequest(http.MethodDelete, "/", nil), adminID), adminID.String())
		rr := httptest.NewRecorder()
		h.DeleteUser(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "you cannot delete your own admin account", readResponse(t, rr).Message)
	})

	t.Run("DeleteOtherAdmin", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc)
		svc.On("DeleteUser", mock.Anything, adminID, targetID).Return(ErrDeleteOtherAdmin).Once()

		req := withUserID(asAdmin(httptest.NewRequest(http.MethodDelete, "/", nil), adminID), targetID.String())
		rr := httptest.NewRecorder()
		h.DeleteUser(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("Deleted", func(t *testing.T) {
		svc := new(MockService)
		h := NewHandler(svc)
		svc.On("DeleteUser", mock.Anything, adminID, targetID).Return(nil).Once()

		req := withUserID(asAdmin(httptest.NewRequest(http.MethodDelete, "/", nil), adminID), targetID.String())
		rr := httptest.NewRecorder()
		h.DeleteUser(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}
