package model

import "context"

// UserCredential holds the externally-issued tokens for one user.
// Credentials originate at login, outside this service; the core only
// reads them and writes back refreshed access tokens.
type UserCredential struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Email        string `json:"email"`
	Name         string `json:"name"`
}

// CredentialStore is keyed by user id; Put upserts.
type CredentialStore interface {
	Get(ctx context.Context, userID string) (*UserCredential, error)
	Put(ctx context.Context, cred UserCredential) error
}
