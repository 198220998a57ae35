package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"verifix/models"
	"verifix/utils"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// CredentialVerifier authenticates an email/password pair
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (models.Principal, error)
}

// StaticAccount is a fixed demo principal with its plain text password
type StaticAccount struct {
	models.Principal
	Password string
}

// DemoAccounts are the two built-in demo logins
func DemoAccounts() []StaticAccount {
	return []StaticAccount{
		{
			Principal: models.Principal{Email: "admin@verifix.com", Role: models.RoleAdmin, Name: "Admin User"},
			Password:  "admin123",
		},
		{
			Principal: models.Principal{Email: "user@test.com", Role: models.RoleUser, Name: "Test User"},
			Password:  "user123",
		},
	}
}

// StaticVerifier checks credentials against a small fixed set of principals.
// Passwords are held only as bcrypt hashes.
type StaticVerifier struct {
	accounts map[string]models.StoredPrincipal
}

func NewStaticVerifier(accounts []StaticAccount) (*StaticVerifier, error) {
	v := &StaticVerifier{accounts: make(map[string]models.StoredPrincipal, len(accounts))}
	for _, a := range accounts {
		hash, err := utils.HashPassword(a.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing password for %s: %w", a.Email, err)
		}
		v.accounts[normalizeEmail(a.Email)] = models.StoredPrincipal{Principal: a.Principal, PasswordHash: hash}
	}
	return v, nil
}

func (v *StaticVerifier) Verify(ctx context.Context, email, password string) (models.Principal, error) {
	acct, ok := v.accounts[normalizeEmail(email)]
	if !ok || !utils.CheckPasswordHash(password, acct.PasswordHash) {
		return models.Principal{}, ErrInvalidCredentials
	}
	return acct.Principal, nil
}

// PrincipalFinder looks up stored principals by email
type PrincipalFinder interface {
	FindPrincipal(ctx context.Context, email string) (*models.StoredPrincipal, error)
}

// StoreVerifier checks credentials against a principal store such as MongoDB
type StoreVerifier struct {
	store PrincipalFinder
}

func NewStoreVerifier(store PrincipalFinder) *StoreVerifier {
	return &StoreVerifier{store: store}
}

func (v *StoreVerifier) Verify(ctx context.Context, email, password string) (models.Principal, error) {
	p, err := v.store.FindPrincipal(ctx, normalizeEmail(email))
	if err != nil {
		return models.Principal{}, fmt.Errorf("looking up principal: %w", err)
	}
	if p == nil || !utils.CheckPasswordHash(password, p.PasswordHash) {
		return models.Principal{}, ErrInvalidCredentials
	}
	if !p.Role.Valid() {
		p.Role = models.RoleUser
	}
	return p.Principal, nil
}

// ChainVerifier tries each verifier in order and returns the first match
type ChainVerifier []CredentialVerifier

func (c ChainVerifier) Verify(ctx context.Context, email, password string) (models.Principal, error) {
	var lastErr error = ErrInvalidCredentials
	for _, v := range c {
		p, err := v.Verify(ctx, email, password)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrInvalidCredentials) {
			lastErr = err
		}
	}
	return models.Principal{}, lastErr
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
