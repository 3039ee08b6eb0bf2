package domain

// Principal is the resolved identity attached to every authorized call.
// Credential verification happens upstream (auth middleware or gateway);
// this core only ever sees the opaque account id and a display name.
//
// Every service operation takes the principal explicitly; there is no
// ambient "current user" state anywhere in the core.
type Principal struct {
	// ID is the opaque account identifier (stable across requests).
	ID string
	// Name is the account's display name, used to seed slug allocation
	// when the shop is first provisioned.
	Name string
}
