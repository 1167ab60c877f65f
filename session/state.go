package session

// State is the session lifecycle state.
//
//	RESTORING -> AUTHENTICATED | ANONYMOUS   (once, after the durable read)
//	AUTHENTICATED <-> ANONYMOUS              (sign-in / sign-up / sign-out)
type State int

const (
	StateRestoring State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateRestoring:
		return "restoring"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Snapshot is the derived session view handed to observers.
type Snapshot struct {
	Token     string // empty when absent
	IsLoading bool   // true only while restoring
	State     State
}

// Authenticated reports whether a token is present.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated
}

// Route is a navigation target in the host application.
type Route string

const (
	RouteHome  Route = "/(tabs)/home"
	RouteLogin Route = "/login"
)

// Navigator receives navigation requests driven by token presence.
type Navigator interface {
	Navigate(route Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Route)

func (f NavigatorFunc) Navigate(route Route) { f(route) }

// CacheResetter drops all cached server state. Called on sign-out and
// whenever the signed-in identity changes.
type CacheResetter interface {
	Reset()
}
