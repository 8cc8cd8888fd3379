package auth

// OwnershipPolicy decides whether an actor may modify a resource owned by
// another identity. Author-only by default; kept transport-independent so it
// can be tested without a live identity collaborator.
type OwnershipPolicy struct{}

// NewOwnershipPolicy creates the default author-only policy
func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// CanModify reports whether actorID may modify a resource owned by ownerID
func (p *OwnershipPolicy) CanModify(actorID, ownerID string) bool {
	if actorID == "" || ownerID == "" {
		return false
	}
	return actorID == ownerID
}
