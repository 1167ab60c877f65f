package main

import (
	"fmt"
	"strconv"

	"github.com/jrsteele09/go-booking-client/booking"
	"github.com/jrsteele09/go-booking-client/query"
	"github.com/spf13/cobra"
)

func readOptions(refresh bool) []query.ReadOption {
	if refresh {
		return []query.ReadOption{query.Force()}
	}
	return nil
}

func newEventsCmd(a *app) *cobra.Command {
	var page int
	var refresh bool
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List events",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			events, err := a.client.Booking.Events(ctx, page, readOptions(refresh)...)
			if err := a.sessionResult(err); err != nil {
				return err
			}
			return a.printEvents(cmd.OutOrStdout(), events)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass cached data")
	return cmd
}

func newEventCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "event <id>",
		Short: "Show one event and its schedules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid event id %q", args[0])
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			event, err := a.client.Booking.Event(ctx, id)
			if err := a.sessionResult(err); err != nil {
				return err
			}
			return a.printEvent(cmd.OutOrStdout(), event)
		},
	}
}

func newBookingsCmd(a *app) *cobra.Command {
	var page int
	var refresh bool
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List your bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			bookings, err := a.client.Booking.Bookings(ctx, page, readOptions(refresh)...)
			if err := a.sessionResult(err); err != nil {
				return err
			}
			return a.printBookings(cmd.OutOrStdout(), bookings)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass cached data")
	return cmd
}

func newBookCmd(a *app) *cobra.Command {
	var req booking.BookingRequest
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a schedule of an event",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			b, err := a.client.Booking.BookEvent(ctx, req)
			if err := a.sessionResult(err); err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(cmd.OutOrStdout(), b)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booking %d is %s.\n", b.ID, b.Status)
			return nil
		},
	}
	cmd.Flags().IntVar(&req.EventID, "event", 0, "Event ID")
	cmd.Flags().IntVar(&req.ScheduleID, "schedule", 0, "Schedule ID")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("schedule")
	return cmd
}
