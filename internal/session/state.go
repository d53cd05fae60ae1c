package session

import "purecerts-console/internal/model"

type Status int

const (
	Initializing Status = iota
	Authenticated
	Unauthenticated
)

func (s Status) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Identity is a user snapshot tagged with its origin: restored from storage
// (provisional) or returned by the remote service (confirmed).
type Identity struct {
	User      model.User
	Confirmed bool
}

// AuthState is the value subscribers and the route guard see. Loading is true
// only until the startup reconciliation resolves.
type AuthState struct {
	User    *Identity
	Loading bool
}

func (s AuthState) IsAuthenticated() bool { return s.User != nil }

func (s AuthState) Status() Status {
	switch {
	case s.Loading:
		return Initializing
	case s.User != nil:
		return Authenticated
	default:
		return Unauthenticated
	}
}

func signedOut(st *AuthState) { st.User = nil }
