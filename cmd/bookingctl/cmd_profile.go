package main

import (
	"fmt"

	"github.com/jrsteele09/go-booking-client/booking"
	"github.com/spf13/cobra"
)

func newProfileCmd(a *app) *cobra.Command {
	var update booking.ProfileUpdate
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			user, err := a.client.Booking.Profile(ctx)
			if err := a.sessionResult(err); err != nil {
				return err
			}
			if update != (booking.ProfileUpdate{}) {
				user, err = a.client.Booking.UpdateProfile(ctx, booking.ProfileChange{ID: user.ID, Update: update})
				if err := a.sessionResult(err); err != nil {
					return err
				}
			}
			return a.printUser(cmd.OutOrStdout(), user)
		},
	}
	cmd.Flags().StringVar(&update.Name, "name", "", "New display name")
	cmd.Flags().StringVar(&update.Email, "email", "", "New email")
	cmd.Flags().StringVar(&update.Phone, "phone", "", "New phone number")
	return cmd
}

func newPaymentInfoCmd(a *app) *cobra.Command {
	var details booking.UserDetails
	cmd := &cobra.Command{
		Use:   "payment-info",
		Short: "Show or update your payment details",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			info, err := a.client.Booking.PaymentInfo(ctx)
			if err := a.sessionResult(err); err != nil {
				return err
			}
			if details != (booking.UserDetails{}) {
				merged := mergeDetails(info.UserDetails, details)
				info, err = a.client.Booking.UpdatePaymentInfo(ctx, booking.PaymentInfoChange{ID: info.ID, Details: merged})
				if err := a.sessionResult(err); err != nil {
					return err
				}
			}
			return a.printPaymentInfo(cmd.OutOrStdout(), info)
		},
	}
	f := cmd.Flags()
	f.StringVar(&details.Name, "name", "", "Billing name")
	f.StringVar(&details.Phone, "phone", "", "Billing phone")
	f.StringVar(&details.Address, "address", "", "Street address")
	f.StringVar(&details.City, "city", "", "City")
	f.StringVar(&details.VisaExpiryDate, "visa-expiry", "", "Visa expiry date")
	f.StringVar(&details.BankName, "bank", "", "Bank name")
	f.StringVar(&details.BankAccountNumber, "account", "", "Bank account number")
	return cmd
}

// mergeDetails overlays the non-empty fields of change on current.
func mergeDetails(current, change booking.UserDetails) booking.UserDetails {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&current.Name, change.Name)
	set(&current.Phone, change.Phone)
	set(&current.Address, change.Address)
	set(&current.City, change.City)
	set(&current.VisaExpiryDate, change.VisaExpiryDate)
	set(&current.BankName, change.BankName)
	set(&current.BankAccountNumber, change.BankAccountNumber)
	return current
}

func newPasswordCmd(a *app) *cobra.Command {
	var change booking.PasswordChange
	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if change.PasswordConfirmation == "" {
				change.PasswordConfirmation = change.Password
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			user, err := a.client.Booking.Profile(ctx)
			if err := a.sessionResult(err); err != nil {
				return err
			}
			err = a.client.Booking.ChangePassword(ctx, booking.PasswordChangeRequest{ID: user.ID, Change: change})
			if err := a.sessionResult(err); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password changed.")
			return nil
		},
	}
	cmd.Flags().StringVar(&change.CurrentPassword, "current", "", "Current password")
	cmd.Flags().StringVar(&change.Password, "new", "", "New password")
	cmd.Flags().StringVar(&change.PasswordConfirmation, "confirm", "", "Confirm new password (defaults to --new)")
	_ = cmd.MarkFlagRequired("current")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}
