package booking

import (
	"strings"

	"github.com/jrsteele09/go-booking-client/api"
)

// Input is checked before anything is sent; failures match api.ErrInvalidRequest.
var invalid = api.Invalid

// Validate checks the credentials are complete.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Identify) == "" {
		return invalid("identify is required")
	}
	if c.Password == "" {
		return invalid("password is required")
	}
	return nil
}

// Validate checks the registration is complete and the passwords agree.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return invalid("name is required")
	}
	if strings.TrimSpace(r.Identify) == "" {
		return invalid("identify is required")
	}
	return validateNewPassword(r.Password, r.PasswordConfirmation)
}

// Validate checks the current password is given and the new one agrees with its confirmation.
func (p PasswordChange) Validate() error {
	if p.CurrentPassword == "" {
		return invalid("current password is required")
	}
	return validateNewPassword(p.Password, p.PasswordConfirmation)
}

// Validate checks both IDs are set.
func (b BookingRequest) Validate() error {
	if b.EventID <= 0 {
		return invalid("event id must be positive, got %d", b.EventID)
	}
	if b.ScheduleID <= 0 {
		return invalid("schedule id must be positive, got %d", b.ScheduleID)
	}
	return nil
}

func validateNewPassword(password, confirmation string) error {
	if password == "" {
		return invalid("password is required")
	}
	if password != confirmation {
		return invalid("password confirmation does not match")
	}
	return nil
}

func validateID(name string, id int) error {
	if id <= 0 {
		return invalid("%s id must be positive, got %d", name, id)
	}
	return nil
}
