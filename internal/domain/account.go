package domain

import (
	"strings"
	"time"
)

// Account is a storefront customer of record.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicAccount is the client-facing view of an Account. It never carries the credential.
type PublicAccount struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public strips the credential.
func (a *Account) Public() *PublicAccount {
	if a == nil {
		return nil
	}
	return &PublicAccount{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Phone:     a.Phone,
		CreatedAt: a.CreatedAt,
	}
}

// NormalizeEmail is the canonical form used as the account lookup key.
func NormalizeEmail(email string) string {
	return strings.Clone(strings.ToLower(strings.TrimSpace(email)))
}
