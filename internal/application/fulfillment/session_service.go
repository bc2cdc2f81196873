package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/orderbridge/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuthStatus is the state of a ShopVox sign-in.
type AuthStatus string

const (
	AuthStatusOK          AuthStatus = "ok"
	AuthStatusMFARequired AuthStatus = "mfa_required"
	AuthStatusPending     AuthStatus = "pending"
	AuthStatusError       AuthStatus = "error"
)

// AuthResult describes where a sign-in attempt ended up.
type AuthResult struct {
	Status  AuthStatus
	Message string
	URL     string
}

// DefaultMFATimeout is how long an MFA submission waits to leave the sign-in page.
const DefaultMFATimeout = 15 * time.Second

// SessionService signs the shared browser session into ShopVox and the vendor sites.
type SessionService struct {
	shopvox ShopVoxAuthenticator
	vendors map[string]VendorAuthenticator
	pages   PageProvider
	logger  *zap.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(shopvox ShopVoxAuthenticator, pages PageProvider, logger *zap.Logger, vendors ...VendorAuthenticator) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[string]VendorAuthenticator, len(vendors))
	for _, v := range vendors {
		byName[v.Name()] = v
	}
	return &SessionService{
		shopvox: shopvox,
		vendors: byName,
		pages:   pages,
		logger:  logger,
	}
}

// ShopVoxSignIn submits the configured ShopVox credentials.
func (s *SessionService) ShopVoxSignIn(ctx context.Context) (*AuthResult, error) {
	res, err := s.shopvox.SignIn(ctx)
	if err != nil {
		return nil, fmt.Errorf("shopvox sign-in: %w", err)
	}
	s.logger.Info("ShopVox sign-in", zap.String("status", string(res.Status)))
	return res, nil
}

// ShopVoxMFA submits a one-time code on the pending sign-in.
func (s *SessionService) ShopVoxMFA(ctx context.Context, code string, trustDevice bool, timeout time.Duration) (*AuthResult, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "code is required")
	}
	if timeout <= 0 {
		timeout = DefaultMFATimeout
	}
	res, err := s.shopvox.SubmitMFA(ctx, code, trustDevice, timeout)
	if err != nil {
		return nil, fmt.Errorf("shopvox mfa: %w", err)
	}
	s.logger.Info("ShopVox MFA submitted", zap.String("status", string(res.Status)))
	return res, nil
}

// VendorLogin signs into one vendor site by name.
func (s *SessionService) VendorLogin(ctx context.Context, name string) error {
	auth, ok := s.vendors[name]
	if !ok {
		return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Unknown vendor '%s'", name))
	}

	pageCtx, closePage, err := s.pages.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("open browser page: %w", err)
	}
	defer closePage()

	if err := auth.Login(pageCtx); err != nil {
		s.logger.Warn("Vendor login failed", zap.String("vendor", name), zap.Error(err))
		return fmt.Errorf("%s login: %w", name, err)
	}
	s.logger.Info("Vendor login succeeded", zap.String("vendor", name))
	return nil
}
