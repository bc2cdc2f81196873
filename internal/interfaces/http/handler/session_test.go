package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	fulfillmentapp "github.com/orderbridge/backend/internal/application/fulfillment"
	"github.com/orderbridge/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSessionRouter(shopvox *MockShopVoxAuthenticator, vendors ...fulfillmentapp.VendorAuthenticator) *gin.Engine {
	svc := fulfillmentapp.NewSessionService(shopvox, stubPages{}, nil, vendors...)
	h := NewSessionHandler(svc, 15*time.Second)

	r := gin.New()
	r.GET("/login/shopvox", h.ShopVoxLogin)
	r.POST("/login/shopvox/mfa", h.ShopVoxMFA)
	r.GET("/login/sanmar", h.SanMarLogin)
	r.GET("/login/ss", h.SSActivewearLogin)
	return r
}

func TestAuthStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, authStatusCode(fulfillmentapp.AuthStatusOK))
	assert.Equal(t, http.StatusAccepted, authStatusCode(fulfillmentapp.AuthStatusMFARequired))
	assert.Equal(t, http.StatusAccepted, authStatusCode(fulfillmentapp.AuthStatusPending))
	assert.Equal(t, http.StatusUnauthorized, authStatusCode(fulfillmentapp.AuthStatusError))
}

func TestSessionHandler_ShopVoxLogin(t *testing.T) {
	tests := []struct {
		name   string
		result *fulfillmentapp.AuthResult
		code   int
	}{
		{"signed in", &fulfillmentapp.AuthResult{Status: fulfillmentapp.AuthStatusOK, Message: "Logged in", URL: "https://express.shopvox.com/dashboard"}, http.StatusOK},
		{"mfa requested", &fulfillmentapp.AuthResult{Status: fulfillmentapp.AuthStatusMFARequired, Message: "MFA code requested"}, http.StatusAccepted},
		{"rejected", &fulfillmentapp.AuthResult{Status: fulfillmentapp.AuthStatusError, Message: "Invalid email or password"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shopvox := new(MockShopVoxAuthenticator)
			shopvox.On("SignIn", mock.Anything).Return(tt.result, nil)

			w := httptest.NewRecorder()
			newSessionRouter(shopvox).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login/shopvox", nil))

			assert.Equal(t, tt.code, w.Code)
			var resp dto.AuthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, string(tt.result.Status), resp.Status)
			assert.Equal(t, tt.result.Message, resp.Message)
		})
	}
}

func TestSessionHandler_ShopVoxMFA(t *testing.T) {
	post := func(r *gin.Engine, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login/shopvox/mfa", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("defaults trust device and timeout", func(t *testing.T) {
		shopvox := new(MockShopVoxAuthenticator)
		shopvox.On("SubmitMFA", mock.Anything, "123456", true, 15*time.Second).
			Return(&fulfillmentapp.AuthResult{Status: fulfillmentapp.AuthStatusOK, Message: "MFA accepted"}, nil)

		w := post(newSessionRouter(shopvox), `{"code":"123456"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		shopvox.AssertExpectations(t)
	})

	t.Run("honours request options", func(t *testing.T) {
		shopvox := new(MockShopVoxAuthenticator)
		shopvox.On("SubmitMFA", mock.Anything, "654321", false, 3*time.Second).
			Return(&fulfillmentapp.AuthResult{Status: fulfillmentapp.AuthStatusPending, Message: "still waiting"}, nil)

		w := post(newSessionRouter(shopvox), `{"code":"654321","trust_device":false,"timeout_ms":3000}`)
		assert.Equal(t, http.StatusAccepted, w.Code)
		shopvox.AssertExpectations(t)
	})

	t.Run("code is required", func(t *testing.T) {
		shopvox := new(MockShopVoxAuthenticator)

		w := post(newSessionRouter(shopvox), `{"trust_device":true}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		shopvox.AssertNotCalled(t, "SubmitMFA", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSessionHandler_VendorLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		sanmar := &stubVendorLogin{name: "sanmar"}
		w := httptest.NewRecorder()
		newSessionRouter(new(MockShopVoxAuthenticator), sanmar).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login/sanmar", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Successfully logged in"}`, w.Body.String())
		assert.Equal(t, 1, sanmar.calls)
	})

	t.Run("login failure is 500", func(t *testing.T) {
		ss := &stubVendorLogin{name: "ss", err: errors.New("login form not found")}
		w := httptest.NewRecorder()
		newSessionRouter(new(MockShopVoxAuthenticator), ss).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login/ss", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "login form not found")
	})

	t.Run("vendor not configured is 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		newSessionRouter(new(MockShopVoxAuthenticator)).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login/ss", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
