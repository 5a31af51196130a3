package rentauth_test

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rentora/rentauth"
	"github.com/rentora/rentauth/middleware"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = rentauth.New

	var _ *rentauth.Engine
	var _ rentauth.Config
	var _ rentauth.Account
	var _ rentauth.Profile
	var _ rentauth.RegisterRequest
	var _ rentauth.RegisterResult
	var _ rentauth.LoginResult
	var _ rentauth.TokenPair
	var _ rentauth.VerificationRequest
	var _ rentauth.CurrentUser
	var _ rentauth.AccountStore
	var _ rentauth.NotificationSender
	var _ rentauth.IdentityProvider
	var _ rentauth.AuditSink

	var _ error = rentauth.ErrInvalidInput
	var _ error = rentauth.ErrInvalidCredentials
	var _ error = rentauth.ErrEmailExists
	var _ error = rentauth.ErrPhoneExists
	var _ error = rentauth.ErrAccountNotFound
	var _ error = rentauth.ErrAlreadyFullyVerified
	var _ error = rentauth.ErrTokenInvalid
	var _ error = rentauth.ErrTokenExpired
	var _ error = rentauth.ErrProviderToken

	var _ func(*rentauth.Engine) gin.HandlerFunc = middleware.RequireSession

	var _ func(*rentauth.Engine, context.Context, rentauth.RegisterRequest) (*rentauth.RegisterResult, error) = (*rentauth.Engine).Register
	var _ func(*rentauth.Engine, context.Context, string, string) (*rentauth.LoginResult, error) = (*rentauth.Engine).Login
	var _ func(*rentauth.Engine, context.Context, string) (*rentauth.TokenPair, error) = (*rentauth.Engine).Refresh
	var _ func(*rentauth.Engine, context.Context, string) (*rentauth.LoginResult, error) = (*rentauth.Engine).LoginWithFederatedProvider
	var _ func(*rentauth.Engine, context.Context, string) (*rentauth.CurrentUser, error) = (*rentauth.Engine).GetCurrentUser
	var _ func(*rentauth.Engine, context.Context, string) (string, error) = (*rentauth.Engine).RevealNationalID
}
