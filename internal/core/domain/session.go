package domain

// Session is the console-side record of one browser's authentication state:
// the opaque bearer token issued by the fleet API, the identity resolved from
// it, and whether that resolution has finished.
//
// Ready flips to true exactly once per token change, after the resolution
// attempt completes (success or failure). A session with Ready true and no
// User is an unauthenticated session.
type Session struct {
	Token string
	User  *User
	Ready bool
}

// Authenticated reports whether the resolution finished with a known user.
func (s Session) Authenticated() bool {
	return s.Ready && s.User != nil
}
