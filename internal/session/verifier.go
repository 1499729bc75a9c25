package session

import (
	"context"
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/employee-management/internal"
)

// CredentialVerifier decides whether a username/password pair may log in and
// which display name the session gets.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (name string, ok bool)
}

// StaticVerifier accepts exactly one fixed credential pair.
type StaticVerifier struct {
	Username string
	Password string
	Name     string
}

// DefaultVerifier is the demo account: admin / password.
func DefaultVerifier() StaticVerifier {
	return StaticVerifier{Username: "admin", Password: "password", Name: "Administrator"}
}

func (v StaticVerifier) Verify(_ context.Context, username, password string) (string, bool) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(v.Password)) == 1
	if !userOK || !passOK {
		return "", false
	}
	return v.Name, true
}

type account struct {
	name string
	hash []byte
}

// BcryptVerifier checks passwords against bcrypt hashes from configuration.
type BcryptVerifier struct {
	accounts map[string]account
}

func NewBcryptVerifier(users []internal.UserCredential) *BcryptVerifier {
	accounts := make(map[string]account, len(users))
	for _, u := range users {
		name := u.Name
		if name == "" {
			name = u.Username
		}
		accounts[u.Username] = account{name: name, hash: []byte(u.PasswordHash)}
	}
	return &BcryptVerifier{accounts: accounts}
}

func (v *BcryptVerifier) Verify(_ context.Context, username, password string) (string, bool) {
	acc, ok := v.accounts[username]
	if !ok {
		return "", false
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return "", false
	}
	return acc.name, true
}

// HashPassword creates a bcrypt hash suitable for security.users.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// NewVerifier picks the bcrypt verifier when users are configured and the
// demo account otherwise.
func NewVerifier(cfg internal.SecurityConfig) CredentialVerifier {
	if len(cfg.Users) > 0 {
		return NewBcryptVerifier(cfg.Users)
	}
	return DefaultVerifier()
}
