package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	fulfillmentapp "github.com/orderbridge/backend/internal/application/fulfillment"
	"github.com/orderbridge/backend/internal/interfaces/http/dto"
)

// SessionHandler signs the shared browser into ShopVox and the vendor sites
type SessionHandler struct {
	BaseHandler
	sessions   *fulfillmentapp.SessionService
	mfaTimeout time.Duration
}

// NewSessionHandler creates a new SessionHandler. mfaTimeout is used when a
// request does not carry timeout_ms.
func NewSessionHandler(sessions *fulfillmentapp.SessionService, mfaTimeout time.Duration) *SessionHandler {
	if mfaTimeout <= 0 {
		mfaTimeout = fulfillmentapp.DefaultMFATimeout
	}
	return &SessionHandler{
		sessions:   sessions,
		mfaTimeout: mfaTimeout,
	}
}

// authStatusCode maps a sign-in state to its HTTP status
func authStatusCode(status fulfillmentapp.AuthStatus) int {
	switch status {
	case fulfillmentapp.AuthStatusOK:
		return http.StatusOK
	case fulfillmentapp.AuthStatusMFARequired, fulfillmentapp.AuthStatusPending:
		return http.StatusAccepted
	default:
		return http.StatusUnauthorized
	}
}

// ShopVoxLogin godoc
// @ID           loginShopVox
// @Summary      Sign in to ShopVox
// @Description  Submits the configured ShopVox credentials. 202 means an MFA code is expected or the site has not answered yet.
// @Tags         login
// @Produce      json
// @Success      200 {object} dto.AuthResponse
// @Success      202 {object} dto.AuthResponse
// @Failure      401 {object} dto.AuthResponse
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /login/shopvox [get]
func (h *SessionHandler) ShopVoxLogin(c *gin.Context) {
	res, err := h.sessions.ShopVoxSignIn(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(authStatusCode(res.Status), dto.FromAuthResult(res))
}

// ShopVoxMFA godoc
// @ID           submitShopVoxMFA
// @Summary      Submit a ShopVox MFA code
// @Description  Enters the code on the pending sign-in and waits for ShopVox to accept it
// @Tags         login
// @Accept       json
// @Produce      json
// @Param        request body dto.MFARequest true "MFA code"
// @Success      200 {object} dto.AuthResponse
// @Success      202 {object} dto.AuthResponse
// @Failure      401 {object} dto.AuthResponse
// @Failure      400 {object} ErrorResponse
// @Router       /login/shopvox/mfa [post]
func (h *SessionHandler) ShopVoxMFA(c *gin.Context) {
	var req dto.MFARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	trust := true
	if req.TrustDevice != nil {
		trust = *req.TrustDevice
	}
	timeout := h.mfaTimeout
	if req.TimeoutMS > 0 {
		timeout = time.Duration(req.TimeoutMS) * time.Millisecond
	}

	res, err := h.sessions.ShopVoxMFA(c.Request.Context(), req.Code, trust, timeout)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(authStatusCode(res.Status), dto.FromAuthResult(res))
}

// SanMarLogin godoc
// @ID           loginSanMar
// @Summary      Sign in to SanMar
// @Tags         login
// @Produce      json
// @Success      200 {object} dto.MessageResponse
// @Failure      500 {object} ErrorResponse
// @Router       /login/sanmar [get]
func (h *SessionHandler) SanMarLogin(c *gin.Context) {
	h.vendorLogin(c, "sanmar")
}

// SSActivewearLogin godoc
// @ID           loginSSActivewear
// @Summary      Sign in to S&S Activewear
// @Tags         login
// @Produce      json
// @Success      200 {object} dto.MessageResponse
// @Failure      500 {object} ErrorResponse
// @Router       /login/ss [get]
func (h *SessionHandler) SSActivewearLogin(c *gin.Context) {
	h.vendorLogin(c, "ss")
}

func (h *SessionHandler) vendorLogin(c *gin.Context, vendor string) {
	if err := h.sessions.VendorLogin(c.Request.Context(), vendor); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.MessageResponse{Message: "Successfully logged in"})
}
