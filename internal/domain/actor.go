package domain

// Actor is the entity performing an action, as seen by the policy engine.
// It is built by the identity adapter from the authenticated session and is
// read-only to the core.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
