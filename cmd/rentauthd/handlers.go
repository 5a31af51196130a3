package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rentora/rentauth"
	"github.com/rentora/rentauth/middleware"
)

// handlers translates HTTP requests into engine calls. All authentication
// decisions live in the engine; this layer only shapes JSON.
type handlers struct {
	engine *rentauth.Engine
	log    *zap.Logger
}

func newHandlers(engine *rentauth.Engine, log *zap.Logger) *handlers {
	return &handlers{engine: engine, log: log}
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (h *handlers) ok(c *gin.Context, status int, message string, data any) {
	c.JSON(status, apiResponse{Success: true, Message: message, Data: data})
}

func (h *handlers) fail(c *gin.Context, err error) {
	code := rentauth.Code(err)
	status := statusForCode(code)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, apiResponse{Success: false, Message: messageForCode(code, err), Code: code})
}

func statusForCode(code string) int {
	switch code {
	case "INVALID_INPUT", "BUDGET_RANGE_INVALID", "ROLE_NOT_ALLOWED",
		"RESET_TOKEN_INVALID", "VERIFICATION_TOKEN_INVALID":
		return http.StatusBadRequest
	case "INVALID_CREDENTIALS", "TOKEN_INVALID", "TOKEN_EXPIRED", "PROVIDER_TOKEN_INVALID":
		return http.StatusUnauthorized
	case "EMAIL_NOT_VERIFIED":
		return http.StatusForbidden
	case "ACCOUNT_NOT_FOUND", "PROFILE_NOT_FOUND", "NATIONAL_ID_UNAVAILABLE":
		return http.StatusNotFound
	case "EMAIL_EXISTS", "PHONE_EXISTS", "ALREADY_VERIFIED", "PASSWORD_REUSE":
		return http.StatusConflict
	case "RESET_TOKEN_EXPIRED", "VERIFICATION_TOKEN_EXPIRED":
		return http.StatusGone
	case "PROVIDER_UNAVAILABLE":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func messageForCode(code string, err error) string {
	if code == "INTERNAL" {
		// Never leak internal error detail.
		return "internal error"
	}
	return err.Error()
}

type registerBody struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

func (h *handlers) register(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, rentauth.ErrInvalidInput)
		return
	}

	result, err := h.engine.Register(c.Request.Context(), rentauth.RegisterRequest{
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Phone:     body.Phone,
		Role:      rentauth.Role(body.Role),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusCreated, "account registered", gin.H{"account_id": result.AccountID})
}

type loginBody struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *handlers) login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, rentauth.ErrInvalidInput)
		return
	}

	result, err := h.engine.Login(c.Request.Context(), body.Identifier, body.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, "login successful", loginData(result))
}

func loginData(result *rentauth.LoginResult) gin.H {
	return gin.H{
		"access_token":   result.AccessToken,
		"refresh_token":  result.RefreshToken,
		"account_id":     result.AccountID,
		"email_verified": result.EmailVerified,
		"fully_verified": result.FullyVerified,
	}
}

type refreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *handlers) refresh(c *gin.Context) {
	var body refreshBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, rentauth.ErrInvalidInput)
		return
	}

	pair, err := h.engine.Refresh(c.Request.Context(), body.RefreshToken)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, "tokens refreshed", gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

type federatedBody struct {
	AccessToken string `json:"access_token"`
}

func (h *handlers) federatedLogin(c *gin.Context) {
	var body federatedBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, rentauth.ErrInvalidInput)
		return
	}

	result, err := h.engine.LoginWithFederatedProvider(c.Request.Context(), body.AccessToken)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, "login successful", loginData(result))
}

type forgotPasswordBody struct {
	Email string `json:"email"`
}

func (h *handlers) forgotPassword(c *gin.Context) {
	var body forgotPasswordBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, rentauth.ErrInvalidInput)
		return
	}

	if err := h.engine.ForgotPassword(c.Request.Context(), body.Email); err != nil {
		h.fail(c, err)
		return
	}

	// Same response whether or not the email is registered.
	h.ok(c, http.StatusOK, "if the email is registered, a reset link has been sent", nil)
}

type resetPasswordBody struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *handlers) resetPassword(c *gin.Context) {
	var body resetPasswordBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, rentauth.ErrInvalidInput)
		return
	}

	if err := h.engine.ResetPassword(c.Request.Context(), body.Token, body.Password); err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, "password reset", nil)
}

type changePasswordBody struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *handlers) changePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.fail(c, rentauth.ErrTokenInvalid)
		return
	}

	var body changePasswordBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, rentauth.ErrInvalidInput)
		return
	}

	if err := h.engine.ChangePassword(c.Request.Context(), user.ID, body.CurrentPassword, body.NewPassword); err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, "password changed", nil)
}

func (h *handlers) resendVerificationEmail(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.fail(c, rentauth.ErrTokenInvalid)
		return
	}

	if err := h.engine.SendVerificationEmail(c.Request.Context(), user.ID); err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, "verification email sent", nil)
}

const verifyEmailPage = `<!DOCTYPE html>
<html>
<head><title>Email verification</title></head>
<body><h1>%s</h1><p>%s</p></body>
</html>`

// verifyEmail is the browser-facing endpoint the mailed link points at,
// so it renders a small HTML page instead of the JSON envelope.
func (h *handlers) verifyEmail(c *gin.Context) {
	token := c.Query("token")
	err := h.engine.VerifyEmail(c.Request.Context(), token)
	switch {
	case err == nil:
		c.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, verifyEmailPage, "Email verified", "Your email address has been verified. You can close this page.")
	case errors.Is(err, rentauth.ErrVerificationTokenExpired):
		c.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusGone, verifyEmailPage, "Link expired", "This verification link has expired. Sign in and request a new one.")
	default:
		c.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusBadRequest, verifyEmailPage, "Invalid link", "This verification link is not valid.")
	}
}

func (h *handlers) me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.fail(c, rentauth.ErrTokenInvalid)
		return
	}

	h.ok(c, http.StatusOK, "current user", currentUserData(user))
}

func currentUserData(user *rentauth.CurrentUser) gin.H {
	data := gin.H{
		"id":              user.ID,
		"email":           user.Email,
		"role":            user.Role,
		"email_verified":  user.EmailVerified,
		"fully_verified":  user.FullyVerified,
		"first_name":      user.FirstName,
		"last_name":       user.LastName,
		"phone":           user.Phone,
		"bio":             user.Bio,
		"avatar_url":      user.AvatarURL,
		"budget_min":      user.BudgetMin,
		"budget_max":      user.BudgetMax,
		"score":           user.Score,
		"gender":          user.Gender,
		"national_id_set": user.NationalIDSet,
	}
	if !user.Birthdate.IsZero() {
		data["birthdate"] = user.Birthdate.Format("2006-01-02")
	}
	return data
}

type profileUpdateBody struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
	BudgetMin *int    `json:"budget_min"`
	BudgetMax *int    `json:"budget_max"`
}

func (h *handlers) updateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.fail(c, rentauth.ErrTokenInvalid)
		return
	}

	var body profileUpdateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, rentauth.ErrInvalidInput)
		return
	}

	profile, err := h.engine.UpdateProfile(c.Request.Context(), user.ID, rentauth.ProfileUpdate{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Phone:     body.Phone,
		Bio:       body.Bio,
		AvatarURL: body.AvatarURL,
		BudgetMin: body.BudgetMin,
		BudgetMax: body.BudgetMax,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, "profile updated", gin.H{
		"first_name": profile.FirstName,
		"last_name":  profile.LastName,
		"phone":      profile.Phone,
		"bio":        profile.Bio,
		"avatar_url": profile.AvatarURL,
		"budget_min": profile.BudgetMin,
		"budget_max": profile.BudgetMax,
		"score":      profile.Score,
	})
}

type completeVerificationBody struct {
	NationalID string `json:"national_id"`
	Gender     string `json:"gender"`
	Birthdate  string `json:"birthdate"`
}

func (h *handlers) completeVerification(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.fail(c, rentauth.ErrTokenInvalid)
		return
	}

	var body completeVerificationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, rentauth.ErrInvalidInput)
		return
	}

	birthdate, err := time.Parse("2006-01-02", body.Birthdate)
	if err != nil {
		h.fail(c, rentauth.ErrInvalidInput)
		return
	}

	err = h.engine.CompleteVerification(c.Request.Context(), user.ID, rentauth.VerificationRequest{
		NationalID: body.NationalID,
		Gender:     rentauth.Gender(body.Gender),
		Birthdate:  birthdate,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, "identity verified", nil)
}

func (h *handlers) revealNationalID(c *gin.Context) {
	token, ok := middleware.AccessToken(c)
	if !ok {
		h.fail(c, rentauth.ErrTokenInvalid)
		return
	}

	nationalID, err := h.engine.RevealNationalID(c.Request.Context(), token)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, "national id", gin.H{"national_id": nationalID})
}

func (h *handlers) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
