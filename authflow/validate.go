package authflow

import "github.com/kidigo/storefront/users"

// Local validation. Every rule runs client-side before a network call;
// field errors land under the canonical field names.

func validateLogin(form LoginForm) map[string]string {
	fieldErrors := map[string]string{}
	if err := users.ValidateEmail(form.Email); err != nil {
		fieldErrors[FieldEmail] = err.Error()
	}
	if form.Password == "" {
		fieldErrors[FieldPassword] = "password is required"
	}
	return fieldErrors
}

func validateSignup(form SignupForm) map[string]string {
	fieldErrors := map[string]string{}
	if form.FullName == "" {
		fieldErrors[FieldFullName] = "full name is required"
	}
	if err := users.ValidateEmail(form.Email); err != nil {
		fieldErrors[FieldEmail] = err.Error()
	}
	if err := users.ValidatePasswordStrength(form.Password); err != nil {
		fieldErrors[FieldPassword] = err.Error()
	}
	switch {
	case form.ConfirmPassword == "":
		fieldErrors[FieldConfirmPassword] = "please confirm your password"
	case form.ConfirmPassword != form.Password:
		fieldErrors[FieldConfirmPassword] = "passwords do not match"
	}
	return fieldErrors
}

func validateVerification(form VerificationForm) map[string]string {
	fieldErrors := map[string]string{}
	if err := users.ValidateOTP(form.Code); err != nil {
		fieldErrors[FieldCode] = err.Error()
	}
	return fieldErrors
}

func validateForgotPassword(form ForgotPasswordForm) map[string]string {
	fieldErrors := map[string]string{}
	if err := users.ValidateEmail(form.Email); err != nil {
		fieldErrors[FieldEmail] = err.Error()
	}
	return fieldErrors
}

func validateResetPassword(form ResetPasswordForm) map[string]string {
	fieldErrors := map[string]string{}
	if err := users.ValidateEmail(form.Email); err != nil {
		fieldErrors[FieldEmail] = err.Error()
	}
	if err := users.ValidateOTP(form.Code); err != nil {
		fieldErrors[FieldCode] = err.Error()
	}
	if err := users.ValidatePasswordStrength(form.NewPassword); err != nil {
		fieldErrors[FieldNewPassword] = err.Error()
	}
	switch {
	case form.ConfirmPassword == "":
		fieldErrors[FieldConfirmPassword] = "please confirm your password"
	case form.ConfirmPassword != form.NewPassword:
		fieldErrors[FieldConfirmPassword] = "passwords do not match"
	}
	return fieldErrors
}
