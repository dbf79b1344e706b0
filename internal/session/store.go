package session

import "context"

// CredentialStore is the single source of truth for the authenticated
// session: the access token plus the cached user profile.
type CredentialStore interface {
	Save(ctx context.Context, current Session) error
	Load(ctx context.Context) (Session, error)
	Clear(ctx context.Context) error
}
