package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kidigo/storefront/authflow"
	"github.com/kidigo/storefront/notify"
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in and persist the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			password, err := readSecret(cmd, "Password: ")
			if err != nil {
				return err
			}

			flow := authflow.New(a.auth, a.session, authflow.WithLogger(a.log))
			flow.Open()
			if err := setFields(flow,
				authflow.FieldEmail, args[0],
				authflow.FieldPassword, password,
			); err != nil {
				return err
			}

			err = a.relay.Run(cmd.Context(), notify.Messages{
				Loading: "Signing in...",
				Success: "Signed in",
			}, flow.Submit)
			if err != nil {
				return flowError(flow, err)
			}

			user := a.session.User()
			fmt.Printf("Signed in as %s <%s>\n", user.FullName, user.Email)
			return nil
		},
	}
	return cmd
}

func newSignupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup <email>",
		Short: "Register a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			fullName, _ := cmd.Flags().GetString("name")
			if fullName == "" {
				return errors.New("--name is required")
			}
			password, err := readSecret(cmd, "Password: ")
			if err != nil {
				return err
			}
			confirm, err := readSecret(cmd, "Confirm password: ")
			if err != nil {
				return err
			}

			flow := authflow.New(a.auth, a.session, authflow.WithLogger(a.log))
			flow.Open(authflow.ViewSignup)
			if err := setFields(flow,
				authflow.FieldFullName, fullName,
				authflow.FieldEmail, args[0],
				authflow.FieldPassword, password,
				authflow.FieldConfirmPassword, confirm,
			); err != nil {
				return err
			}

			err = a.relay.Run(cmd.Context(), notify.Messages{
				Loading: "Creating account...",
				Success: "Account created",
			}, flow.Submit)
			if err != nil {
				return flowError(flow, err)
			}

			fmt.Printf("Check %s for a verification code, then run: storefront verify %s <code>\n",
				args[0], args[0])
			return nil
		},
	}
	cmd.Flags().String("name", "", "Full name for the new account")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <email> <code>",
		Short: "Verify a new account with the emailed code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			flow := authflow.New(a.auth, a.session, authflow.WithLogger(a.log))
			flow.Open(authflow.ViewVerification)
			if err := setFields(flow,
				authflow.FieldEmail, args[0],
				authflow.FieldCode, args[1],
			); err != nil {
				return err
			}

			err = a.relay.Run(cmd.Context(), notify.Messages{
				Loading: "Verifying...",
				Success: "Account verified",
			}, flow.Submit)
			if err != nil {
				return flowError(flow, err)
			}

			user := a.session.User()
			fmt.Printf("Verified and signed in as %s <%s>\n", user.FullName, user.Email)
			return nil
		},
	}
}

func newForgotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forgot <email>",
		Short: "Request a password reset code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			flow := authflow.New(a.auth, a.session, authflow.WithLogger(a.log))
			flow.Open(authflow.ViewForgotPassword)
			if err := setFields(flow, authflow.FieldEmail, args[0]); err != nil {
				return err
			}

			err = a.relay.Run(cmd.Context(), notify.Messages{
				Loading: "Requesting reset code...",
				Success: "Reset code sent",
			}, flow.Submit)
			if err != nil {
				return flowError(flow, err)
			}

			fmt.Printf("Check %s for a reset code, then run: storefront reset %s <code>\n",
				args[0], args[0])
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <email> <code>",
		Short: "Set a new password using the emailed reset code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			password, err := readSecret(cmd, "New password: ")
			if err != nil {
				return err
			}
			confirm, err := readSecret(cmd, "Confirm new password: ")
			if err != nil {
				return err
			}

			flow := authflow.New(a.auth, a.session, authflow.WithLogger(a.log))
			flow.Open(authflow.ViewResetPassword)
			if err := setFields(flow,
				authflow.FieldEmail, args[0],
				authflow.FieldCode, args[1],
				authflow.FieldNewPassword, password,
				authflow.FieldConfirmPassword, confirm,
			); err != nil {
				return err
			}

			err = a.relay.Run(cmd.Context(), notify.Messages{
				Loading: "Resetting password...",
				Success: "Password reset",
			}, flow.Submit)
			if err != nil {
				return flowError(flow, err)
			}

			fmt.Println("Password reset. Sign in with: storefront login", args[0])
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Println("Signed out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user, refreshed from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			displayAppName(a.cfg.GetAppName())

			if err := a.session.Refresh(cmd.Context()); err != nil {
				return err
			}
			user := a.session.User()
			if user == nil {
				fmt.Println("Not signed in")
				return nil
			}

			fmt.Printf("%s <%s>\n", user.FullName, user.Email)
			fmt.Printf("  role: %s  verified: %t\n", user.Role, user.Verified)

			claims, err := a.session.TokenClaims()
			if err != nil {
				a.log.Debug().Err(err).Msg("token claims unavailable")
				return nil
			}
			fmt.Printf("  token expires: %s", claims.ExpiresAt.Format(time.RFC3339))
			if claims.Expired(time.Now()) {
				fmt.Print("  (expired)")
			}
			fmt.Println()
			return nil
		},
	}
}

// setFields writes field/value pairs into the active view. A rejected
// field means the command wired the wrong field for its view, so the
// error is returned rather than logged.
func setFields(flow *authflow.Controller, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := flow.SetField(pairs[i], pairs[i+1]); err != nil {
			return errors.Wrapf(err, "setting %s", pairs[i])
		}
	}
	return nil
}

// flowError folds the controller's field errors into the returned
// error so validation failures read as more than "validation failed".
func flowError(flow *authflow.Controller, err error) error {
	fieldErrors := flow.Errors()
	if len(fieldErrors) == 0 {
		return err
	}
	lines := make([]string, 0, len(fieldErrors))
	for field, message := range fieldErrors {
		if field == authflow.FieldSubmit {
			lines = append(lines, message)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", field, message))
	}
	return errors.Errorf("%s", strings.Join(lines, "; "))
}

// readSecret prompts on stderr and reads one line from stdin. Input is
// not masked; this client targets scripted and dev use.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, "reading input")
	}
	return strings.TrimSpace(line), nil
}
