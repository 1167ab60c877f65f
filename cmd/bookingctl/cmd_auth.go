package main

import (
	"errors"
	"fmt"

	"github.com/jrsteele09/go-booking-client/api"
	"github.com/jrsteele09/go-booking-client/booking"
	"github.com/jrsteele09/go-booking-client/session"
	"github.com/jrsteele09/go-booking-client/token"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var creds booking.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			resp, err := a.client.Booking.Login(ctx, creds)
			if err := a.sessionResult(err); err != nil {
				return err
			}
			a.logger.Debug().Str("route", string(a.route)).Msg("signed in")
			return a.greet(cmd, resp, err)
		},
	}
	cmd.Flags().StringVarP(&creds.Identify, "identify", "u", "", "Email or phone number")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Password")
	_ = cmd.MarkFlagRequired("identify")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var reg booking.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			if reg.PasswordConfirmation == "" {
				reg.PasswordConfirmation = reg.Password
			}
			resp, err := a.client.Booking.Register(ctx, reg)
			if err := a.sessionResult(err); err != nil {
				return err
			}
			return a.greet(cmd, resp, err)
		},
	}
	cmd.Flags().StringVarP(&reg.Name, "name", "n", "", "Display name")
	cmd.Flags().StringVarP(&reg.Identify, "identify", "u", "", "Email or phone number")
	cmd.Flags().StringVarP(&reg.Password, "password", "p", "", "Password")
	cmd.Flags().StringVar(&reg.PasswordConfirmation, "confirm", "", "Password confirmation (defaults to --password)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("identify")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			if err := a.sessionResult(a.client.Booking.Logout(ctx)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			snap := a.client.Session.Snapshot()
			if !snap.Authenticated() {
				fmt.Fprintln(out, "Not signed in.")
				return nil
			}
			fmt.Fprintf(out, "Signed in (%s).\n", snap.State)
			if !token.LooksLikeJWT(snap.Token) {
				return nil
			}
			claims, err := a.client.Session.Claims()
			if err != nil {
				a.logger.Debug().Err(err).Msg("token is not a readable JWT")
				return nil
			}
			if a.jsonOutput {
				return a.printJSON(out, claims)
			}
			fmt.Fprintf(out, "Subject: %s\n", claims.Subject)
			if claims.Email != "" {
				fmt.Fprintf(out, "Email:   %s\n", claims.Email)
			}
			if !claims.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "Expires: %s (expired: %t)\n", claims.ExpiresAt.Format("2006-01-02 15:04"), claims.Expired())
			}
			return nil
		},
	}
}

// sessionResult turns a failed durable write into a warning: the session is
// live for this invocation but will not survive a restart.
func (a *app) sessionResult(err error) error {
	var perr *session.PersistenceError
	if err == nil || errors.As(err, &perr) {
		return nil
	}
	a.logger.Debug().Err(err).Msg("request failed")
	return errors.New(api.UserMessage(err))
}

func (a *app) greet(cmd *cobra.Command, resp booking.AuthResponse, err error) error {
	if err != nil {
		a.logger.Warn().Err(err).Msg("session token was not saved")
	}
	if a.jsonOutput {
		return a.printJSON(cmd.OutOrStdout(), resp)
	}
	name := resp.Account().Name
	if name == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", name)
	return nil
}
