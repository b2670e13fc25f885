package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
	"userauth/internal/logging"
	"userauth/internal/service"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) result(args mock.Arguments) (*service.Result, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Result), args.Error(1)
}

func (m *MockAuthService) CreateUser(ctx context.Context, in service.CreateUserInput) (*service.Result, error) {
	return m.result(m.Called(ctx, in))
}

func (m *MockAuthService) LoginUser(ctx context.Context, in service.LoginInput) (*service.Result, error) {
	return m.result(m.Called(ctx, in))
}

func (m *MockAuthService) SendResetLink(ctx context.Context, in service.ForgotPasswordInput) (*service.Result, error) {
	return m.result(m.Called(ctx, in))
}

func (m *MockAuthService) VerifyTokenAndResetPassword(ctx context.Context, in service.ResetPasswordInput) (*service.Result, error) {
	return m.result(m.Called(ctx, in))
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.Claims) (*service.Result, error) {
	return m.result(m.Called(ctx, claims))
}

func newContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthHandler_ForgetPassword(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{name: "sent", body: `{"email":"a@x.com"}`, wantStatus: http.StatusOK},
		{name: "unknown email", body: `{"email":"a@x.com"}`, serviceErr: apperrors.ErrUserNotFound, wantStatus: http.StatusNotFound, wantCode: "USER_NOT_FOUND"},
		{name: "smtp down", body: `{"email":"a@x.com"}`, serviceErr: apperrors.ErrNotification, wantStatus: http.StatusInternalServerError, wantCode: "NOTIFICATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthService)
			if tt.serviceErr != nil {
				svc.On("SendResetLink", mock.Anything, service.ForgotPasswordInput{Email: "a@x.com"}).Return(nil, tt.serviceErr)
			} else {
				svc.On("SendResetLink", mock.Anything, service.ForgotPasswordInput{Email: "a@x.com"}).
					Return(&service.Result{HTTPStatus: http.StatusOK, Message: "sent"}, nil)
			}

			c, rec := newContext(http.MethodPost, "/auth/forget", tt.body)
			require.NoError(t, NewAuthHandler(svc).ForgetPassword(c))

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, float64(tt.wantStatus), body["httpStatus"])
			if tt.wantCode != "" {
				assert.Equal(t, "error", body["status"])
				assert.Equal(t, tt.wantCode, body["code"])
			} else {
				assert.Equal(t, "success", body["status"])
				assert.NotContains(t, body, "token")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_CreateUserBadBody(t *testing.T) {
	svc := new(MockAuthService)
	c, rec := newContext(http.MethodPost, "/auth/create", `{"fname":`)

	require.NoError(t, NewAuthHandler(svc).CreateUser(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec)["code"])
	svc.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestAuthHandler_GetTokenData(t *testing.T) {
	h := NewAuthHandler(new(MockAuthService))

	c, rec := newContext(http.MethodGet, "/auth/getTokenData", "")
	require.NoError(t, h.GetTokenData(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newContext(http.MethodGet, "/auth/getTokenData", "")
	c.Set(ClaimsContextKey, &auth.Claims{UserID: "u-1", Email: "a@x.com", Purpose: auth.PurposeSession})
	require.NoError(t, h.GetTokenData(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "u-1", data["user_id"])
	assert.Equal(t, "a@x.com", data["email"])
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{name: "echo not found", err: echo.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND", wantMsg: "Not Found"},
		{name: "gate rejection", err: echo.NewHTTPError(http.StatusForbidden, "invalid or expired token"), wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN", wantMsg: "invalid or expired token"},
		{name: "domain error", err: apperrors.ErrEmailInUse, wantStatus: http.StatusConflict, wantCode: "EMAIL_IN_USE", wantMsg: "email already in use"},
		{name: "raw error is hidden", err: errors.New("dial tcp 10.0.0.1:27017: i/o timeout"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR", wantMsg: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/", "")
			ErrorHandler(logging.Discard())(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, "error", body["status"])
			assert.Equal(t, tt.wantCode, body["code"])
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}
