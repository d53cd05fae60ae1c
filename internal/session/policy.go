package session

// Operation names a remote call the store makes on behalf of the session.
type Operation string

const (
	OpSignIn      Operation = "sign_in"
	OpVerify      Operation = "verify"
	OpRefreshUser Operation = "refresh_user"
	OpRevoke      Operation = "revoke"
)

// Action is what a failed Operation does to the session.
type Action int

const (
	// Propagate returns the failure to the caller and leaves the session alone.
	Propagate Action = iota
	// RecoverSignedOut purges the session and reports success to the caller.
	RecoverSignedOut
	// Ignore logs the failure and reports success to the caller.
	Ignore
)

func (a Action) String() string {
	switch a {
	case Propagate:
		return "propagate"
	case RecoverSignedOut:
		return "recover-signed-out"
	case Ignore:
		return "ignore"
	default:
		return "unknown"
	}
}

type Policy map[Operation]Action

// DefaultPolicy returns a fresh copy of the failure table the store runs with.
func DefaultPolicy() Policy {
	return Policy{
		OpSignIn:      Propagate,
		OpVerify:      RecoverSignedOut,
		OpRefreshUser: RecoverSignedOut,
		OpRevoke:      Ignore,
	}
}

// Action falls back to Propagate for operations missing from the table.
func (p Policy) Action(op Operation) Action {
	if a, ok := p[op]; ok {
		return a
	}
	return Propagate
}
