package authflow

// View names the active pane of the authentication interaction.
// ViewClosed is the implicit terminal meta-state: a successful login or
// verification lands there, as does an explicit close.
type View string

const (
	ViewClosed         View = "closed"
	ViewLogin          View = "login"
	ViewSignup         View = "signup"
	ViewVerification   View = "verification"
	ViewForgotPassword View = "forgotPassword"
	ViewResetPassword  View = "resetPassword"
)

// Canonical field names. The error map is keyed by these; server field
// errors in either naming convention are folded onto them.
const (
	FieldFullName        = "fullName"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldCode            = "code"
	FieldNewPassword     = "newPassword"

	// FieldSubmit carries the catch-all banner for the active view.
	FieldSubmit = "submit"
)

// serverFieldNames folds the backend's snake_case variants (and its
// "otp" name for the verification code) onto the canonical keys.
var serverFieldNames = map[string]string{
	"full_name":        FieldFullName,
	"confirm_password": FieldConfirmPassword,
	"new_password":     FieldNewPassword,
	"otp":              FieldCode,
}

func normalizeFieldName(name string) string {
	if canonical, ok := serverFieldNames[name]; ok {
		return canonical
	}
	return name
}

// LoginForm buffers the sign-in view.
type LoginForm struct {
	Email    string
	Password string
}

// SignupForm buffers the registration view.
type SignupForm struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// VerificationForm buffers the OTP view. Email is remembered from the
// signup that preceded it and shown in the prompt.
type VerificationForm struct {
	Email string
	Code  string
}

// ForgotPasswordForm buffers the forgot-password view.
type ForgotPasswordForm struct {
	Email string
}

// ResetPasswordForm buffers the reset view. Email is pre-filled from
// the forgot-password submission.
type ResetPasswordForm struct {
	Email           string
	Code            string
	NewPassword     string
	ConfirmPassword string
}
