package authapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kidigo/storefront/authapi"
	"github.com/kidigo/storefront/gateway"
	"github.com/kidigo/storefront/storage"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*authapi.Client, storage.TokenStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	tokens := storage.NewTokenStore(storage.NewMemStore())
	return authapi.New(gateway.New(server.URL, tokens)), tokens
}

func TestLoginPersistsToken(t *testing.T) {
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, gateway.EndpointAuthLogin, r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"data": {"token": "jwt-abc", "user": {"email": "a@b.com", "isVerified": true}}
		}`))
	})

	result, err := client.Login(context.Background(), "a@b.com", "Passw0rd")
	require.NoError(t, err)
	require.Equal(t, "jwt-abc", result.Token)
	require.Equal(t, "a@b.com", result.User.Email)
	require.True(t, result.User.Verified)

	stored, ok := tokens.Token()
	require.True(t, ok)
	require.Equal(t, "jwt-abc", stored)
}

func TestLoginFailureLeavesTokenUntouched(t *testing.T) {
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	})

	_, err := client.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	require.True(t, gateway.IsAuthError(err))

	_, ok := tokens.Token()
	require.False(t, ok)
}

func TestVerifyOTPPersistsToken(t *testing.T) {
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, gateway.EndpointAuthVerifyOTP, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"data": {"token": "jwt-verified", "user": {"email": "a@b.com"}}
		}`))
	})

	result, err := client.VerifyOTP(context.Background(), "a@b.com", "123456")
	require.NoError(t, err)
	require.Equal(t, "jwt-verified", result.Token)

	stored, _ := tokens.Token()
	require.Equal(t, "jwt-verified", stored)
}

func TestRegisterReturnsUser(t *testing.T) {
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, gateway.EndpointAuthRegister, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"status": "success",
			"message": "OTP sent",
			"data": {"user": {"email": "new@b.com", "fullName": "New User"}}
		}`))
	})

	user, err := client.Register(context.Background(), authapi.RegisterRequest{
		FullName: "New User",
		Email:    "new@b.com",
		Password: "Passw0rd",
	})
	require.NoError(t, err)
	require.Equal(t, "new@b.com", user.Email)

	// Registration never yields a token.
	_, ok := tokens.Token()
	require.False(t, ok)
}

func TestMe(t *testing.T) {
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, gateway.EndpointAuthMe, r.URL.Path)
		require.Equal(t, "Bearer current", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","data":{"user":{"email":"me@b.com"}}}`))
	})
	require.NoError(t, tokens.SetToken("current"))

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "me@b.com", user.Email)
}

func TestResetFlowPayloads(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	ctx := context.Background()
	require.NoError(t, client.ResendOTP(ctx, "a@b.com"))
	require.NoError(t, client.ForgotPassword(ctx, "a@b.com"))
	require.NoError(t, client.ResetPassword(ctx, "a@b.com", "123456", "NewPass1"))
	require.Equal(t, []string{
		gateway.EndpointAuthResendOTP,
		gateway.EndpointAuthForgotPassword,
		gateway.EndpointAuthResetPassword,
	}, paths)
}
