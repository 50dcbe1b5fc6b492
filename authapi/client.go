// Package authapi is the typed client for the backend's auth surface:
// registration, OTP verification, login, password reset and the
// current-user lookup.
package authapi

import (
	"context"
	"encoding/json"

	"github.com/kidigo/storefront/gateway"
	"github.com/kidigo/storefront/users"
	"github.com/pkg/errors"
)

// Client maps auth endpoints to gateway verbs. Error handling lives in
// the gateway; everything surfacing from here is either an *APIError or
// a decode failure.
type Client struct {
	gw *gateway.Gateway
}

func New(gw *gateway.Gateway) *Client {
	return &Client{gw: gw}
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// AuthResult is the outcome of login and OTP verification: the fresh
// user record plus the bearer token the backend issued.
type AuthResult struct {
	User  *users.User
	Token string
}

type authData struct {
	Token string      `json:"token"`
	User  *users.User `json:"user"`
}

type userData struct {
	User *users.User `json:"user"`
}

// Register creates an unverified account. The backend mails an OTP to
// the given address; VerifyOTP completes the signup.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*users.User, error) {
	resp, err := c.gw.Post(ctx, gateway.EndpointAuthRegister, req)
	if err != nil {
		return nil, err
	}

	var data userData
	if err := decodeData(resp, &data); err != nil {
		return nil, errors.Wrap(err, "[Client.Register]")
	}
	return data.User, nil
}

// Login exchanges credentials for a token and persists it through the
// gateway's token store, so the very next request is authenticated.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	payload := map[string]string{"email": email, "password": password}
	resp, err := c.gw.Post(ctx, gateway.EndpointAuthLogin, payload)
	if err != nil {
		return nil, err
	}

	var data authData
	if err := decodeData(resp, &data); err != nil {
		return nil, errors.Wrap(err, "[Client.Login]")
	}
	if data.Token != "" {
		if err := c.gw.Tokens().SetToken(data.Token); err != nil {
			return nil, errors.Wrap(err, "[Client.Login] persist token")
		}
	}
	return &AuthResult{User: data.User, Token: data.Token}, nil
}

// VerifyOTP confirms the emailed code. Like Login it persists the
// issued token before returning.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (*AuthResult, error) {
	payload := map[string]string{"email": email, "otp": otp}
	resp, err := c.gw.Post(ctx, gateway.EndpointAuthVerifyOTP, payload)
	if err != nil {
		return nil, err
	}

	var data authData
	if err := decodeData(resp, &data); err != nil {
		return nil, errors.Wrap(err, "[Client.VerifyOTP]")
	}
	if data.Token != "" {
		if err := c.gw.Tokens().SetToken(data.Token); err != nil {
			return nil, errors.Wrap(err, "[Client.VerifyOTP] persist token")
		}
	}
	return &AuthResult{User: data.User, Token: data.Token}, nil
}

// ResendOTP asks the backend to mail a fresh verification code.
func (c *Client) ResendOTP(ctx context.Context, email string) error {
	_, err := c.gw.Post(ctx, gateway.EndpointAuthResendOTP, map[string]string{"email": email})
	return err
}

// ForgotPassword starts the reset flow; the backend mails a reset code.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.gw.Post(ctx, gateway.EndpointAuthForgotPassword, map[string]string{"email": email})
	return err
}

// ResetPassword completes the reset flow with the mailed code.
func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	payload := map[string]string{
		"email":       email,
		"code":        code,
		"newPassword": newPassword,
	}
	_, err := c.gw.Post(ctx, gateway.EndpointAuthResetPassword, payload)
	return err
}

// Me returns the account record for the current bearer token.
func (c *Client) Me(ctx context.Context) (*users.User, error) {
	resp, err := c.gw.Get(ctx, gateway.EndpointAuthMe)
	if err != nil {
		return nil, err
	}

	var data userData
	if err := decodeData(resp, &data); err != nil {
		return nil, errors.Wrap(err, "[Client.Me]")
	}
	return data.User, nil
}

func decodeData(resp *gateway.Response, v any) error {
	var env gateway.Envelope
	if err := resp.DecodeJSON(&env); err != nil {
		return err
	}
	if len(env.Data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(env.Data, v), "decode data")
}
