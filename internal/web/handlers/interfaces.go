package handlers

import "context"

// UserLookup fetches the upstream statistics body for a validated username.
type UserLookup interface {
	FetchUserProgress(ctx context.Context, username string) ([]byte, error)
}
