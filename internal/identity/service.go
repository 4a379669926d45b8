// internal/identity/service.go
package identity

import "context"

// Directory resolves authenticated user ids to profiles. The auth provider
// issues the id; this directory only stores the projection.
type Directory interface {
	Profile(ctx context.Context, id string) (*Profile, error)
	Register(ctx context.Context, profile Profile) error
}
