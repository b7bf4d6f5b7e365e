package auth

import (
	"context"

	"github.com/spec-kit/grocery-service/internal/domain"
)

// Credential is what an identity is resolved from: either a password
// credential on login or a session credential when a signed-in token is
// restored.
type Credential interface {
	CredentialEmail() string
	isCredential()
}

// PasswordCredential is an email and plaintext secret pair.
type PasswordCredential struct {
	Email  string
	Secret string
}

func (c PasswordCredential) CredentialEmail() string { return c.Email }
func (PasswordCredential) isCredential()             {}

// SessionCredential is the email of an already validated session.
type SessionCredential struct {
	Email string
}

func (c SessionCredential) CredentialEmail() string { return c.Email }
func (SessionCredential) isCredential()             {}

// Resolver turns a credential into an identity.
type Resolver interface {
	Resolve(ctx context.Context, cred Credential) (domain.Identity, error)
}
