// Package authflow drives the multi-step sign-in/sign-up interaction
// as an explicit view state machine over the auth client and the
// session store.
package authflow

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/kidigo/storefront/authapi"
	"github.com/kidigo/storefront/gateway"
	"github.com/kidigo/storefront/users"
	"github.com/rs/zerolog"
)

const resendCooldown = 60 * time.Second

// AuthService is the backend surface the controller drives.
type AuthService interface {
	Register(ctx context.Context, req authapi.RegisterRequest) (*users.User, error)
	Login(ctx context.Context, email, password string) (*authapi.AuthResult, error)
	VerifyOTP(ctx context.Context, email, otp string) (*authapi.AuthResult, error)
	ResendOTP(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// SessionStore receives the identity produced by a successful login or
// verification.
type SessionStore interface {
	Login(user *users.User, token string) error
}

// Controller holds the in-progress authentication interaction: the
// active view, per-view field buffers, the field-error map, the busy
// flag and the two independent resend cooldowns. Nothing here is
// persisted; Open resets and Close discards.
type Controller struct {
	mu sync.Mutex

	view   View
	login  LoginForm
	signup SignupForm
	verify VerificationForm
	forgot ForgotPasswordForm
	reset  ResetPasswordForm

	fieldErrors map[string]string
	status      string
	busy        bool

	otpResendExpiry   time.Time
	resetResendExpiry time.Time

	api     AuthService
	session SessionStore
	nowTime func() time.Time
	log     zerolog.Logger
}

type Option func(*Controller)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Controller) {
		c.nowTime = nowFunc
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

func New(api AuthService, session SessionStore, options ...Option) *Controller {
	c := &Controller{
		view:        ViewClosed,
		fieldErrors: map[string]string{},
		api:         api,
		session:     session,
		nowTime:     time.Now,
		log:         zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Open starts a fresh interaction at the given view (login when none is
// supplied). All buffers, errors and cooldowns reset.
func (c *Controller) Open(initial ...View) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
	c.view = ViewLogin
	if len(initial) > 0 && initial[0] != ViewClosed {
		c.view = initial[0]
	}
}

// Close discards the interaction; every per-view buffer resets.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Controller) resetLocked() {
	c.view = ViewClosed
	c.login = LoginForm{}
	c.signup = SignupForm{}
	c.verify = VerificationForm{}
	c.forgot = ForgotPasswordForm{}
	c.reset = ResetPasswordForm{}
	c.fieldErrors = map[string]string{}
	c.status = ""
	c.otpResendExpiry = time.Time{}
	c.resetResendExpiry = time.Time{}
}

func (c *Controller) CurrentView() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Controller) IsOpen() bool {
	return c.CurrentView() != ViewClosed
}

func (c *Controller) IsBusy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// StatusMessage is the transient success banner (set after a completed
// password reset).
func (c *Controller) StatusMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Errors returns a copy of the field-error map. Local and server
// validation failures share it, keyed by canonical field name, with
// FieldSubmit carrying the catch-all banner.
func (c *Controller) Errors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := make(map[string]string, len(c.fieldErrors))
	for k, v := range c.fieldErrors {
		copied[k] = v
	}
	return copied
}

func (c *Controller) FieldError(field string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fieldErrors[field]
}

// Form snapshots.

func (c *Controller) Login() LoginForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.login
}

func (c *Controller) Signup() SignupForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signup
}

func (c *Controller) Verification() VerificationForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verify
}

func (c *Controller) ForgotPassword() ForgotPasswordForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forgot
}

func (c *Controller) ResetPassword() ResetPasswordForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reset
}

// SetField writes one field of the active view's buffer and clears any
// error on that field, mirroring a user typing over a flagged input.
func (c *Controller) SetField(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view == ViewClosed {
		return ErrClosed
	}

	var ok bool
	switch c.view {
	case ViewLogin:
		ok = setLoginField(&c.login, field, value)
	case ViewSignup:
		ok = setSignupField(&c.signup, field, value)
	case ViewVerification:
		ok = setVerificationField(&c.verify, field, value)
	case ViewForgotPassword:
		if field == FieldEmail {
			c.forgot.Email = value
			ok = true
		}
	case ViewResetPassword:
		ok = setResetField(&c.reset, field, value)
	}
	if !ok {
		return ErrUnknownField
	}

	delete(c.fieldErrors, field)
	delete(c.fieldErrors, FieldSubmit)
	return nil
}

func setLoginField(form *LoginForm, field, value string) bool {
	switch field {
	case FieldEmail:
		form.Email = value
	case FieldPassword:
		form.Password = value
	default:
		return false
	}
	return true
}

func setSignupField(form *SignupForm, field, value string) bool {
	switch field {
	case FieldFullName:
		form.FullName = value
	case FieldEmail:
		form.Email = value
	case FieldPassword:
		form.Password = value
	case FieldConfirmPassword:
		form.ConfirmPassword = value
	default:
		return false
	}
	return true
}

// Email is settable here so a caller entering the verification view
// directly (rather than arriving from signup) can seed it.
func setVerificationField(form *VerificationForm, field, value string) bool {
	switch field {
	case FieldEmail:
		form.Email = value
	case FieldCode:
		form.Code = value
	default:
		return false
	}
	return true
}

func setResetField(form *ResetPasswordForm, field, value string) bool {
	switch field {
	case FieldEmail:
		form.Email = value
	case FieldCode:
		form.Code = value
	case FieldNewPassword:
		form.NewPassword = value
	case FieldConfirmPassword:
		form.ConfirmPassword = value
	default:
		return false
	}
	return true
}

// View transitions with no guards.

func (c *Controller) SwitchToSignup() {
	c.switchView(ViewSignup)
}

func (c *Controller) SwitchToLogin() {
	c.switchView(ViewLogin)
}

func (c *Controller) SwitchToForgotPassword() {
	c.switchView(ViewForgotPassword)
}

// BackToForgotPassword leaves the reset view to request another code.
func (c *Controller) BackToForgotPassword() {
	c.switchView(ViewForgotPassword)
}

func (c *Controller) switchView(view View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view == ViewClosed {
		return
	}
	c.view = view
	c.fieldErrors = map[string]string{}
	c.status = ""
}

// Submit runs the active view's submission: local validation first,
// then the backend call, then the transition. While a submission is in
// flight further submits are rejected with ErrBusy and no state change.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.view == ViewClosed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}

	view := c.view
	var fieldErrors map[string]string
	switch view {
	case ViewLogin:
		fieldErrors = validateLogin(c.login)
	case ViewSignup:
		fieldErrors = validateSignup(c.signup)
	case ViewVerification:
		fieldErrors = validateVerification(c.verify)
	case ViewForgotPassword:
		fieldErrors = validateForgotPassword(c.forgot)
	case ViewResetPassword:
		fieldErrors = validateResetPassword(c.reset)
	}
	if len(fieldErrors) > 0 {
		c.fieldErrors = fieldErrors
		c.mu.Unlock()
		return ErrValidation
	}

	c.fieldErrors = map[string]string{}
	c.status = ""
	c.busy = true
	login, signup, verify, forgot, reset := c.login, c.signup, c.verify, c.forgot, c.reset
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	switch view {
	case ViewLogin:
		return c.submitLogin(ctx, login)
	case ViewSignup:
		return c.submitSignup(ctx, signup)
	case ViewVerification:
		return c.submitVerification(ctx, verify)
	case ViewForgotPassword:
		return c.submitForgotPassword(ctx, forgot)
	default:
		return c.submitResetPassword(ctx, reset)
	}
}

func (c *Controller) submitLogin(ctx context.Context, form LoginForm) error {
	result, err := c.api.Login(ctx, form.Email, form.Password)
	if err != nil {
		return c.fail(err)
	}
	if err := c.session.Login(result.User, result.Token); err != nil {
		return c.fail(err)
	}

	c.log.Debug().Str("email", form.Email).Msg("login complete")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	return nil
}

func (c *Controller) submitSignup(ctx context.Context, form SignupForm) error {
	user, err := c.api.Register(ctx, authapi.RegisterRequest{
		FullName: form.FullName,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		return c.fail(err)
	}

	registeredEmail := form.Email
	if user != nil && user.Email != "" {
		registeredEmail = user.Email
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.verify = VerificationForm{Email: registeredEmail}
	c.view = ViewVerification
	return nil
}

func (c *Controller) submitVerification(ctx context.Context, form VerificationForm) error {
	result, err := c.api.VerifyOTP(ctx, form.Email, form.Code)
	if err != nil {
		return c.fail(err)
	}
	if err := c.session.Login(result.User, result.Token); err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	return nil
}

func (c *Controller) submitForgotPassword(ctx context.Context, form ForgotPasswordForm) error {
	if err := c.api.ForgotPassword(ctx, form.Email); err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset = ResetPasswordForm{Email: form.Email}
	c.view = ViewResetPassword
	c.resetResendExpiry = c.nowTime().Add(resendCooldown)
	return nil
}

func (c *Controller) submitResetPassword(ctx context.Context, form ResetPasswordForm) error {
	if err := c.api.ResetPassword(ctx, form.Email, form.Code, form.NewPassword); err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset = ResetPasswordForm{}
	c.view = ViewLogin
	c.status = "Password reset successfully. Please sign in."
	return nil
}

// ResendOTP requests a fresh verification code. Guarded by the busy
// flag and its own cooldown; a successful send starts a 60 second
// countdown.
func (c *Controller) ResendOTP(ctx context.Context) error {
	c.mu.Lock()
	if c.view == ViewClosed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.remainingLocked(c.otpResendExpiry) > 0 {
		c.mu.Unlock()
		return ErrCooldown
	}
	email := c.verify.Email
	c.busy = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	if err := c.api.ResendOTP(ctx, email); err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.otpResendExpiry = c.nowTime().Add(resendCooldown)
	return nil
}

// OTPResendRemaining returns the whole seconds left on the OTP resend
// cooldown; zero re-enables the action.
func (c *Controller) OTPResendRemaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked(c.otpResendExpiry)
}

// ResetResendRemaining returns the whole seconds left on the reset-code
// cooldown started by a forgot-password submission.
func (c *Controller) ResetResendRemaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked(c.resetResendExpiry)
}

func (c *Controller) remainingLocked(expiry time.Time) int {
	if expiry.IsZero() {
		return 0
	}
	left := expiry.Sub(c.nowTime())
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Seconds()))
}

// fail records a submission failure: server field errors merge into the
// error map under canonical names, anything else lands on the submit
// banner. The view does not change.
func (c *Controller) fail(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if apiErr, ok := gateway.AsAPIError(err); ok {
		if len(apiErr.Fields) > 0 {
			for name, message := range apiErr.Fields {
				c.fieldErrors[normalizeFieldName(name)] = message
			}
		} else {
			c.fieldErrors[FieldSubmit] = apiErr.Message
		}
		return err
	}

	c.fieldErrors[FieldSubmit] = err.Error()
	return err
}
