package booking

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrsteele09/go-booking-client/api"
	"github.com/jrsteele09/go-booking-client/internal/utils"
)

// ErrNoTokenInResponse is returned when /login or /register succeeded
// without returning a token.
var ErrNoTokenInResponse = errors.New("booking: no token in auth response")

// TokenValue returns the token from wherever the server put it.
func (r AuthResponse) TokenValue() string {
	var nested []string
	if r.Data != nil {
		nested = []string{r.Data.Token, r.Data.AccessToken}
	}
	return utils.FirstNonEmpty(append([]string{r.Token, r.AccessToken}, nested...)...)
}

// Account returns the user from wherever the server put it, or the zero User.
func (r AuthResponse) Account() User {
	u := r.User
	if u == nil && r.Data != nil {
		u = r.Data.User
	}
	return utils.Value(u)
}

// Login signs in with credentials and starts the session.
// A *session.PersistenceError means the session started but was not saved.
func (s *Service) Login(ctx context.Context, creds Credentials) (AuthResponse, error) {
	if err := creds.Validate(); err != nil {
		return AuthResponse{}, err
	}
	auth, err := s.authenticate(ctx, "/login", creds)
	if err != nil {
		return auth, err
	}
	return auth, s.session.SignIn(ctx, auth.TokenValue())
}

// Register creates an account and starts the session.
func (s *Service) Register(ctx context.Context, reg Registration) (AuthResponse, error) {
	if err := reg.Validate(); err != nil {
		return AuthResponse{}, err
	}
	auth, err := s.authenticate(ctx, "/register", reg)
	if err != nil {
		return auth, err
	}
	return auth, s.session.SignUp(ctx, auth.TokenValue())
}

// Logout tells the server the token is no longer used, then ends the
// session. The local sign-out happens even if the server call fails.
func (s *Service) Logout(ctx context.Context) error {
	_, err := s.exec.Execute(ctx, api.Request{Method: http.MethodPost, Path: "/logout", AuthRequired: true})
	if err != nil {
		s.logger.Warn().Err(err).Msg("server logout failed, signing out locally")
	}
	return s.session.SignOut(ctx)
}

func (s *Service) authenticate(ctx context.Context, path string, body any) (AuthResponse, error) {
	auth, err := api.Do[AuthResponse](ctx, s.exec, api.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
	if err != nil {
		return auth, err
	}
	if auth.TokenValue() == "" {
		return auth, ErrNoTokenInResponse
	}
	return auth, nil
}
