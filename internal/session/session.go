package session

// State describes where the session slot is in its lifecycle. The store starts
// Uninitialized, moves through Restoring while the durable slot is read, and then
// settles as Authenticated or Anonymous.
type State int

const (
	StateUninitialized State = iota
	StateRestoring
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Identity is the authenticated customer's profile held by the portal. It is created
// together with a Credential on login and both are cleared together on logout; one
// must never outlive the other.
type Identity struct {
	CustomerID string `json:"customerID"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Username   string `json:"username"`
	Email      string `json:"email"`
}
