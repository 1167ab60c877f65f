package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/go-booking-client/api"
	"github.com/jrsteele09/go-booking-client/booking"
)

func (a *app) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table writes aligned columns; rows are tab separated.
func table(w io.Writer, header string, rows []string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, r := range rows {
		fmt.Fprintln(tw, r)
	}
	return tw.Flush()
}

func pageFooter(w io.Writer, meta *api.PageMeta) {
	if meta == nil {
		return
	}
	fmt.Fprintf(w, "\npage %d of %d (%d total)\n", meta.CurrentPage, meta.LastPage, meta.Total)
}

func (a *app) printEvents(w io.Writer, page api.Page[booking.Event]) error {
	if a.jsonOutput {
		return a.printJSON(w, page)
	}
	if len(page.Data) == 0 {
		fmt.Fprintln(w, "No events.")
		return nil
	}
	rows := make([]string, 0, len(page.Data))
	for _, e := range page.Data {
		rows = append(rows, fmt.Sprintf("%d\t%s\t%s\t%s", e.ID, e.Name, e.StartDate, e.Status))
	}
	if err := table(w, "ID\tNAME\tSTARTS\tSTATUS", rows); err != nil {
		return err
	}
	pageFooter(w, page.Meta)
	return nil
}

func (a *app) printEvent(w io.Writer, e booking.Event) error {
	if a.jsonOutput {
		return a.printJSON(w, e)
	}
	fmt.Fprintf(w, "%s (#%d)\n", e.Name, e.ID)
	if e.Location != "" {
		fmt.Fprintf(w, "Location: %s\n", e.Location)
	}
	if e.StartDate != "" {
		fmt.Fprintf(w, "Dates:    %s - %s\n", e.StartDate, e.EndDate)
	}
	fmt.Fprintf(w, "Open:     %t\n", e.Active())
	if e.Description != "" {
		fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(e.Description))
	}
	if len(e.Schedules) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	rows := make([]string, 0, len(e.Schedules))
	for _, s := range e.Schedules {
		rows = append(rows, fmt.Sprintf("%d\t%s\t%s\t%s-%s", s.ID, s.Name, s.Date, s.StartTime, s.EndTime))
	}
	return table(w, "SCHEDULE\tNAME\tDATE\tTIME", rows)
}

func (a *app) printBookings(w io.Writer, page api.Page[booking.Booking]) error {
	if a.jsonOutput {
		return a.printJSON(w, page)
	}
	if len(page.Data) == 0 {
		fmt.Fprintln(w, "No bookings.")
		return nil
	}
	rows := make([]string, 0, len(page.Data))
	for _, b := range page.Data {
		name := ""
		if b.Event != nil {
			name = b.Event.Name
		}
		rows = append(rows, fmt.Sprintf("%d\t%d\t%s\t%d\t%s", b.ID, b.EventID, name, b.ScheduleID, b.Status))
	}
	if err := table(w, "ID\tEVENT\tNAME\tSCHEDULE\tSTATUS", rows); err != nil {
		return err
	}
	pageFooter(w, page.Meta)
	return nil
}

func (a *app) printUser(w io.Writer, u booking.User) error {
	if a.jsonOutput {
		return a.printJSON(w, u)
	}
	return table(w, "FIELD\tVALUE", []string{
		fmt.Sprintf("id\t%d", u.ID),
		fmt.Sprintf("name\t%s", u.Name),
		fmt.Sprintf("email\t%s", u.Email),
		fmt.Sprintf("phone\t%s", u.Phone),
	})
}

func (a *app) printPaymentInfo(w io.Writer, p booking.PaymentInfo) error {
	if a.jsonOutput {
		return a.printJSON(w, p)
	}
	d := p.UserDetails
	return table(w, "FIELD\tVALUE", []string{
		fmt.Sprintf("id\t%d", p.ID),
		fmt.Sprintf("name\t%s", d.Name),
		fmt.Sprintf("phone\t%s", d.Phone),
		fmt.Sprintf("address\t%s, %s", d.Address, d.City),
		fmt.Sprintf("bank\t%s", d.BankName),
		fmt.Sprintf("account\t%s", d.BankAccountNumber),
		fmt.Sprintf("visa expiry\t%s", d.VisaExpiryDate),
	})
}
