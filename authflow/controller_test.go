package authflow_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/kidigo/storefront/authapi"
	"github.com/kidigo/storefront/authflow"
	"github.com/kidigo/storefront/gateway"
	"github.com/kidigo/storefront/users"
	"github.com/stretchr/testify/require"
)

// fakeAuthService counts calls and returns canned outcomes. A non-nil
// block channel makes calls hang until it closes, to exercise the busy
// guard.
type fakeAuthService struct {
	mu    sync.Mutex
	calls map[string]int
	block chan struct{}

	loginResult  *authapi.AuthResult
	loginErr     error
	registerUser *users.User
	registerErr  error
	verifyResult *authapi.AuthResult
	verifyErr    error
	verifyEmail  string
	resendEmail  string
	resendErr    error
	forgotErr    error
	resetErr     error
}

func newFakeAuthService() *fakeAuthService {
	return &fakeAuthService{calls: map[string]int{}}
}

func (f *fakeAuthService) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeAuthService) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAuthService) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeAuthService) Register(ctx context.Context, req authapi.RegisterRequest) (*users.User, error) {
	f.record("register")
	return f.registerUser, f.registerErr
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*authapi.AuthResult, error) {
	f.record("login")
	return f.loginResult, f.loginErr
}

func (f *fakeAuthService) VerifyOTP(ctx context.Context, email, otp string) (*authapi.AuthResult, error) {
	f.mu.Lock()
	f.verifyEmail = email
	f.mu.Unlock()
	f.record("verify")
	return f.verifyResult, f.verifyErr
}

func (f *fakeAuthService) ResendOTP(ctx context.Context, email string) error {
	f.mu.Lock()
	f.resendEmail = email
	f.mu.Unlock()
	f.record("resend")
	return f.resendErr
}

func (f *fakeAuthService) ForgotPassword(ctx context.Context, email string) error {
	f.record("forgot")
	return f.forgotErr
}

func (f *fakeAuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	f.record("reset")
	return f.resetErr
}

// fakeSession records Login calls.
type fakeSession struct {
	mu    sync.Mutex
	user  *users.User
	token string
	calls int
}

func (f *fakeSession) Login(user *users.User, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = user
	f.token = token
	f.calls++
	return nil
}

func setField(t *testing.T, c *authflow.Controller, field, value string) {
	t.Helper()
	require.NoError(t, c.SetField(field, value))
}

func fillSignup(t *testing.T, c *authflow.Controller, email, password string) {
	t.Helper()
	setField(t, c, authflow.FieldFullName, "Jane Doe")
	setField(t, c, authflow.FieldEmail, email)
	setField(t, c, authflow.FieldPassword, password)
	setField(t, c, authflow.FieldConfirmPassword, password)
}

func TestOpenDefaultsToLogin(t *testing.T) {
	c := authflow.New(newFakeAuthService(), &fakeSession{})
	require.Equal(t, authflow.ViewClosed, c.CurrentView())

	c.Open()
	require.Equal(t, authflow.ViewLogin, c.CurrentView())

	c.Open(authflow.ViewSignup)
	require.Equal(t, authflow.ViewSignup, c.CurrentView())
}

func TestMalformedEmailRejectedLocally(t *testing.T) {
	api := newFakeAuthService()
	c := authflow.New(api, &fakeSession{})

	for _, view := range []authflow.View{authflow.ViewSignup, authflow.ViewForgotPassword} {
		c.Open(view)
		if view == authflow.ViewSignup {
			fillSignup(t, c, "not-an-email", "Passw0rd")
		} else {
			setField(t, c, authflow.FieldEmail, "not-an-email")
		}

		err := c.Submit(context.Background())
		require.ErrorIs(t, err, authflow.ErrValidation)
		require.NotEmpty(t, c.FieldError(authflow.FieldEmail))
		require.Equal(t, view, c.CurrentView(), "view must not change")
	}

	require.Zero(t, api.totalCalls(), "no network call on local validation failure")
}

func TestWeakPasswordsRejectedLocally(t *testing.T) {
	api := newFakeAuthService()
	c := authflow.New(api, &fakeSession{})

	for _, password := range []string{"Ab1", "abc123", "ABC123", "Abcdef"} {
		c.Open(authflow.ViewSignup)
		fillSignup(t, c, "a@b.com", password)

		err := c.Submit(context.Background())
		require.ErrorIs(t, err, authflow.ErrValidation, password)
		require.NotEmpty(t, c.FieldError(authflow.FieldPassword))
	}
	require.Zero(t, api.totalCalls())
}

func TestPasswordConfirmationMismatch(t *testing.T) {
	api := newFakeAuthService()
	c := authflow.New(api, &fakeSession{})
	c.Open(authflow.ViewSignup)

	setField(t, c, authflow.FieldFullName, "Jane Doe")
	setField(t, c, authflow.FieldEmail, "a@b.com")
	setField(t, c, authflow.FieldPassword, "Passw0rd")
	setField(t, c, authflow.FieldConfirmPassword, "Different1")

	require.ErrorIs(t, c.Submit(context.Background()), authflow.ErrValidation)
	require.NotEmpty(t, c.FieldError(authflow.FieldConfirmPassword))
	require.Zero(t, api.totalCalls())
}

func TestNonSixDigitCodeRejectedLocally(t *testing.T) {
	api := newFakeAuthService()
	c := authflow.New(api, &fakeSession{})

	for _, code := range []string{"12345", "1234567", "12345a"} {
		c.Open(authflow.ViewVerification)
		setField(t, c, authflow.FieldCode, code)

		require.ErrorIs(t, c.Submit(context.Background()), authflow.ErrValidation, code)
		require.NotEmpty(t, c.FieldError(authflow.FieldCode))
	}
	require.Zero(t, api.totalCalls())
}

func TestLoginInvalidCredentialsShowsBanner(t *testing.T) {
	api := newFakeAuthService()
	api.loginErr = &gateway.APIError{
		Kind:    gateway.KindRequest,
		Status:  http.StatusUnauthorized,
		Message: "Invalid credentials",
	}
	sess := &fakeSession{}
	c := authflow.New(api, sess)
	c.Open()

	setField(t, c, authflow.FieldEmail, "a@b.com")
	setField(t, c, authflow.FieldPassword, "x")

	err := c.Submit(context.Background())
	require.Error(t, err)
	require.Equal(t, "Invalid credentials", c.FieldError(authflow.FieldSubmit))
	require.Equal(t, authflow.ViewLogin, c.CurrentView(), "stays on login")
	require.Zero(t, sess.calls, "session untouched")
	require.False(t, c.IsBusy(), "busy cleared after failure")
}

func TestLoginSuccessClosesAndUpdatesSession(t *testing.T) {
	api := newFakeAuthService()
	api.loginResult = &authapi.AuthResult{
		User:  &users.User{Email: "a@b.com", Verified: true},
		Token: "jwt-abc",
	}
	sess := &fakeSession{}
	c := authflow.New(api, sess)
	c.Open()

	setField(t, c, authflow.FieldEmail, "a@b.com")
	setField(t, c, authflow.FieldPassword, "Passw0rd")

	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, authflow.ViewClosed, c.CurrentView())
	require.Equal(t, 1, sess.calls)
	require.Equal(t, "jwt-abc", sess.token)
	require.Equal(t, "a@b.com", sess.user.Email)
}

func TestSignupSuccessMovesToVerificationWithEmail(t *testing.T) {
	api := newFakeAuthService()
	api.registerUser = &users.User{Email: "a@b.com"}
	c := authflow.New(api, &fakeSession{})
	c.Open(authflow.ViewSignup)

	fillSignup(t, c, "a@b.com", "Passw0rd")

	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, authflow.ViewVerification, c.CurrentView())
	require.Equal(t, "a@b.com", c.Verification().Email)
}

func TestVerificationSuccessClosesWithSession(t *testing.T) {
	api := newFakeAuthService()
	api.verifyResult = &authapi.AuthResult{
		User:  &users.User{Email: "a@b.com", Verified: true},
		Token: "jwt-verified",
	}
	sess := &fakeSession{}
	c := authflow.New(api, sess)
	c.Open(authflow.ViewVerification)
	setField(t, c, authflow.FieldCode, "123456")

	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, authflow.ViewClosed, c.CurrentView())
	require.Equal(t, "jwt-verified", sess.token)
}

// Entering verification directly (not via signup) must let the caller
// seed the email, and that email must reach both VerifyOTP and
// ResendOTP.
func TestVerificationEnteredDirectlyCarriesSeededEmail(t *testing.T) {
	api := newFakeAuthService()
	api.verifyResult = &authapi.AuthResult{
		User:  &users.User{Email: "a@b.com", Verified: true},
		Token: "jwt-verified",
	}
	sess := &fakeSession{}
	c := authflow.New(api, sess)
	c.Open(authflow.ViewVerification)
	setField(t, c, authflow.FieldEmail, "a@b.com")
	setField(t, c, authflow.FieldCode, "123456")

	require.NoError(t, c.ResendOTP(context.Background()))
	require.Equal(t, "a@b.com", api.resendEmail)

	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, "a@b.com", api.verifyEmail)
	require.Equal(t, authflow.ViewClosed, c.CurrentView())
}

func TestForgotPasswordPrefillsResetAndStartsCooldown(t *testing.T) {
	now := time.Now()
	api := newFakeAuthService()
	c := authflow.New(api, &fakeSession{}, authflow.WithNowTime(func() time.Time { return now }))
	c.Open(authflow.ViewForgotPassword)
	setField(t, c, authflow.FieldEmail, "a@b.com")

	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, authflow.ViewResetPassword, c.CurrentView())
	require.Equal(t, "a@b.com", c.ResetPassword().Email)
	require.Equal(t, 60, c.ResetResendRemaining())
}

func TestResetPasswordSuccessReturnsToLogin(t *testing.T) {
	api := newFakeAuthService()
	c := authflow.New(api, &fakeSession{})
	c.Open(authflow.ViewResetPassword)

	setField(t, c, authflow.FieldEmail, "a@b.com")
	setField(t, c, authflow.FieldCode, "123456")
	setField(t, c, authflow.FieldNewPassword, "NewPass1")
	setField(t, c, authflow.FieldConfirmPassword, "NewPass1")

	require.NoError(t, c.Submit(context.Background()))
	require.Equal(t, authflow.ViewLogin, c.CurrentView())
	require.NotEmpty(t, c.StatusMessage())
	require.Empty(t, c.ResetPassword().Email, "reset buffer cleared")
}

func TestResendCooldownMonotonicity(t *testing.T) {
	now := time.Now()
	api := newFakeAuthService()
	c := authflow.New(api, &fakeSession{}, authflow.WithNowTime(func() time.Time { return now }))
	c.Open(authflow.ViewVerification)

	require.Zero(t, c.OTPResendRemaining())
	require.NoError(t, c.ResendOTP(context.Background()))
	require.Equal(t, 1, api.callCount("resend"))

	previous := c.OTPResendRemaining()
	require.Equal(t, 60, previous)

	for i := 0; i < 60; i++ {
		now = now.Add(time.Second)
		remaining := c.OTPResendRemaining()
		require.LessOrEqual(t, remaining, previous, "cooldown only decreases")
		require.GreaterOrEqual(t, remaining, 0, "cooldown never negative")

		if remaining > 0 {
			require.ErrorIs(t, c.ResendOTP(context.Background()), authflow.ErrCooldown)
		}
		previous = remaining
	}

	require.Zero(t, c.OTPResendRemaining(), "re-enabled exactly at zero")
	require.Equal(t, 1, api.callCount("resend"), "no calls during cooldown")

	require.NoError(t, c.ResendOTP(context.Background()))
	require.Equal(t, 2, api.callCount("resend"))
}

func TestSubmitWhileBusyIsRejected(t *testing.T) {
	api := newFakeAuthService()
	api.block = make(chan struct{})
	api.loginResult = &authapi.AuthResult{User: &users.User{Email: "a@b.com"}, Token: "jwt"}
	c := authflow.New(api, &fakeSession{})
	c.Open()

	setField(t, c, authflow.FieldEmail, "a@b.com")
	setField(t, c, authflow.FieldPassword, "Passw0rd")

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- c.Submit(context.Background())
	}()

	require.Eventually(t, c.IsBusy, time.Second, time.Millisecond)
	require.ErrorIs(t, c.Submit(context.Background()), authflow.ErrBusy)
	require.ErrorIs(t, c.ResendOTP(context.Background()), authflow.ErrBusy)

	close(api.block)
	require.NoError(t, <-firstDone)
	require.Equal(t, 1, api.callCount("login"), "second submit made no call")
}

func TestServerFieldErrorsMergeWithNormalization(t *testing.T) {
	api := newFakeAuthService()
	api.registerErr = &gateway.APIError{
		Kind:    gateway.KindRequest,
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Fields: map[string]string{
			"full_name": "Name too short",
			"email":     "Email already registered",
		},
	}
	c := authflow.New(api, &fakeSession{})
	c.Open(authflow.ViewSignup)
	fillSignup(t, c, "a@b.com", "Passw0rd")

	require.Error(t, c.Submit(context.Background()))
	require.Equal(t, "Name too short", c.FieldError(authflow.FieldFullName), "snake_case folded to canonical name")
	require.Equal(t, "Email already registered", c.FieldError(authflow.FieldEmail))
	require.Equal(t, authflow.ViewSignup, c.CurrentView())
}

func TestTypingClearsFieldError(t *testing.T) {
	c := authflow.New(newFakeAuthService(), &fakeSession{})
	c.Open()

	require.ErrorIs(t, c.Submit(context.Background()), authflow.ErrValidation)
	require.NotEmpty(t, c.FieldError(authflow.FieldEmail))

	setField(t, c, authflow.FieldEmail, "a@b.com")
	require.Empty(t, c.FieldError(authflow.FieldEmail))
}

func TestCloseResetsAllBuffers(t *testing.T) {
	c := authflow.New(newFakeAuthService(), &fakeSession{})
	c.Open(authflow.ViewSignup)
	fillSignup(t, c, "a@b.com", "Passw0rd")

	c.Close()
	require.Equal(t, authflow.ViewClosed, c.CurrentView())
	require.ErrorIs(t, c.Submit(context.Background()), authflow.ErrClosed)

	c.Open(authflow.ViewSignup)
	require.Empty(t, c.Signup().Email, "buffers reset on reopen")
}

func TestBackToForgotPasswordFromReset(t *testing.T) {
	c := authflow.New(newFakeAuthService(), &fakeSession{})
	c.Open(authflow.ViewResetPassword)

	c.BackToForgotPassword()
	require.Equal(t, authflow.ViewForgotPassword, c.CurrentView())
}

func TestSwitchLinksFromLogin(t *testing.T) {
	c := authflow.New(newFakeAuthService(), &fakeSession{})
	c.Open()

	c.SwitchToForgotPassword()
	require.Equal(t, authflow.ViewForgotPassword, c.CurrentView())

	c.SwitchToLogin()
	c.SwitchToSignup()
	require.Equal(t, authflow.ViewSignup, c.CurrentView())
}
