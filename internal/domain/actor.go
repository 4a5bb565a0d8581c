package domain

// Actor is the identity the external auth collaborator supplies with
// every request.
type Actor struct {
	ID   string
	Role Role
}
