package booking

import "github.com/jrsteele09/go-booking-client/query"

// Key roots. Patterns built from a root alone match every page or id.
const (
	RootEvents      = "events"
	RootEventDetail = "eventDetail"
	RootBookings    = "bookings"
	RootProfile     = "profile"
	RootPaymentInfo = "paymentInfo"
)

// KeyEvents identifies one page of the event list.
func KeyEvents(page int) query.Key { return query.K(RootEvents, normalisePage(page)) }

// KeyEvent identifies one event.
func KeyEvent(id int) query.Key { return query.K(RootEventDetail, id) }

// KeyBookings identifies one page of the signed-in user's bookings.
func KeyBookings(page int) query.Key { return query.K(RootBookings, normalisePage(page)) }

// KeyProfile identifies the signed-in user's account.
func KeyProfile() query.Key { return query.K(RootProfile) }

// KeyPaymentInfo identifies the signed-in user's payment profile.
func KeyPaymentInfo() query.Key { return query.K(RootPaymentInfo) }

func normalisePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
