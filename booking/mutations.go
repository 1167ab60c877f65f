package booking

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-booking-client/api"
	"github.com/jrsteele09/go-booking-client/mutation"
	"github.com/jrsteele09/go-booking-client/query"
)

// ProfileChange targets the account with ID.
type ProfileChange struct {
	ID     int
	Update ProfileUpdate
}

// PaymentInfoChange targets the payment profile with ID.
type PaymentInfoChange struct {
	ID      int
	Details UserDetails
}

// PasswordChangeRequest targets the account with ID.
type PasswordChangeRequest struct {
	ID     int
	Change PasswordChange
}

// BookEventSpec creates a booking. The booking list and event data
// (remaining capacity) are refetched afterwards.
func (s *Service) BookEventSpec() mutation.Spec[BookingRequest, Booking] {
	return mutation.Spec[BookingRequest, Booking]{
		Name: "bookEvent",
		Fn: func(ctx context.Context, in BookingRequest) (Booking, error) {
			if err := in.Validate(); err != nil {
				return Booking{}, err
			}
			resp, err := s.exec.Execute(ctx, api.Request{
				Method:       http.MethodPost,
				Path:         "/bookings",
				Body:         in,
				AuthRequired: true,
			})
			if err != nil {
				return Booking{}, err
			}
			return decodeItem[Booking](resp.Body)
		},
		Invalidates: []query.Key{query.K(RootBookings), query.K(RootEvents), query.K(RootEventDetail)},
	}
}

// UpdateProfileSpec calls PATCH /user/{id}/update.
func (s *Service) UpdateProfileSpec() mutation.Spec[ProfileChange, User] {
	return mutation.Spec[ProfileChange, User]{
		Name: "updateProfile",
		Fn: func(ctx context.Context, in ProfileChange) (User, error) {
			if err := validateID("user", in.ID); err != nil {
				return User{}, err
			}
			resp, err := s.exec.Execute(ctx, api.Request{
				Method:       http.MethodPatch,
				Path:         "/user/" + strconv.Itoa(in.ID) + "/update",
				Body:         in.Update,
				AuthRequired: true,
			})
			if err != nil {
				return User{}, err
			}
			return decodeItem[User](resp.Body)
		},
		Invalidates: []query.Key{KeyProfile()},
	}
}

// UpdatePaymentInfoSpec calls PATCH /profile/{id}/update.
func (s *Service) UpdatePaymentInfoSpec() mutation.Spec[PaymentInfoChange, PaymentInfo] {
	return mutation.Spec[PaymentInfoChange, PaymentInfo]{
		Name: "updatePaymentInfo",
		Fn: func(ctx context.Context, in PaymentInfoChange) (PaymentInfo, error) {
			if err := validateID("profile", in.ID); err != nil {
				return PaymentInfo{}, err
			}
			resp, err := s.exec.Execute(ctx, api.Request{
				Method:       http.MethodPatch,
				Path:         "/profile/" + strconv.Itoa(in.ID) + "/update",
				Body:         in.Details,
				AuthRequired: true,
			})
			if err != nil {
				return PaymentInfo{}, err
			}
			return decodeItem[PaymentInfo](resp.Body)
		},
		Invalidates: []query.Key{KeyPaymentInfo()},
	}
}

// ChangePasswordSpec calls PATCH /password/{id}/update. No cached read
// depends on the password.
func (s *Service) ChangePasswordSpec() mutation.Spec[PasswordChangeRequest, struct{}] {
	return mutation.Spec[PasswordChangeRequest, struct{}]{
		Name: "changePassword",
		Fn: func(ctx context.Context, in PasswordChangeRequest) (struct{}, error) {
			if err := validateID("user", in.ID); err != nil {
				return struct{}{}, err
			}
			if err := in.Change.Validate(); err != nil {
				return struct{}{}, err
			}
			_, err := s.exec.Execute(ctx, api.Request{
				Method:       http.MethodPatch,
				Path:         "/password/" + strconv.Itoa(in.ID) + "/update",
				Body:         in.Change,
				AuthRequired: true,
			})
			return struct{}{}, err
		},
	}
}

// BookEvent books a schedule of an event.
func (s *Service) BookEvent(ctx context.Context, in BookingRequest) (Booking, error) {
	return mutation.Run(ctx, s.coordinator, s.BookEventSpec(), in)
}

// UpdateProfile changes account fields.
func (s *Service) UpdateProfile(ctx context.Context, in ProfileChange) (User, error) {
	return mutation.Run(ctx, s.coordinator, s.UpdateProfileSpec(), in)
}

// UpdatePaymentInfo changes billing details.
func (s *Service) UpdatePaymentInfo(ctx context.Context, in PaymentInfoChange) (PaymentInfo, error) {
	return mutation.Run(ctx, s.coordinator, s.UpdatePaymentInfoSpec(), in)
}

// ChangePassword changes the account password.
func (s *Service) ChangePassword(ctx context.Context, in PasswordChangeRequest) error {
	_, err := mutation.Run(ctx, s.coordinator, s.ChangePasswordSpec(), in)
	return err
}
