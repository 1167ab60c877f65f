package booking

// Event is a bookable event.
type Event struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Banner      string     `json:"banner,omitempty"`
	Location    string     `json:"location,omitempty"`
	Status      string     `json:"status,omitempty"`
	Capacity    int        `json:"capacity,omitempty"`
	StartDate   string     `json:"start_date,omitempty"`
	EndDate     string     `json:"end_date,omitempty"`
	Schedules   []Schedule `json:"schedules,omitempty"`
}

// Active reports whether the event is open for booking.
func (e Event) Active() bool {
	return e.Status == "active"
}

// Schedule is one session of an event.
type Schedule struct {
	ID        int    `json:"id"`
	Name      string `json:"name,omitempty"`
	Date      string `json:"date,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// Booking statuses reported by the API.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Booking is a reservation of one schedule of an event.
type Booking struct {
	ID         int    `json:"id"`
	EventID    int    `json:"event_id"`
	ScheduleID int    `json:"schedule_id"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at,omitempty"`
	Event      *Event `json:"event,omitempty"`
}

// BookingRequest books a schedule of an event.
type BookingRequest struct {
	EventID    int `json:"event_id"`
	ScheduleID int `json:"schedule_id"`
}

// User is the signed-in account.
type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Identify string `json:"identify,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// ProfileUpdate changes account fields. Empty fields are omitted.
type ProfileUpdate struct {
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// PaymentInfo is the payment profile of the signed-in user.
type PaymentInfo struct {
	ID          int         `json:"id"`
	UserDetails UserDetails `json:"user_details"`
}

// UserDetails holds billing and visa details.
type UserDetails struct {
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
	City              string `json:"city"`
	VisaExpiryDate    string `json:"visa_expiry_date,omitempty"`
	VisaImage         string `json:"visa_image,omitempty"`
	BankName          string `json:"bank_name"`
	BankAccountNumber string `json:"bank_account_number"`
}

// PasswordChange changes the account password.
type PasswordChange struct {
	CurrentPassword      string `json:"current_password"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Credentials signs in an existing account. Identify is an email or phone number.
type Credentials struct {
	Identify string `json:"identify"`
	Password string `json:"password"`
}

// Registration creates an account.
type Registration struct {
	Name                 string `json:"name"`
	Identify             string `json:"identify"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// AuthResponse is the body of /login and /register. Deployments differ in
// where they put the token, so every known location is decoded.
type AuthResponse struct {
	Token       string    `json:"token,omitempty"`
	AccessToken string    `json:"access_token,omitempty"`
	Message     string    `json:"message,omitempty"`
	User        *User     `json:"user,omitempty"`
	Data        *AuthData `json:"data,omitempty"`
}

// AuthData is the enveloped form of an auth response.
type AuthData struct {
	Token       string `json:"token,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	User        *User  `json:"user,omitempty"`
}
