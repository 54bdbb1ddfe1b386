package entity

import "time"

// User is an account holder. A user signs in either with an email address or
// with an EVM wallet; the unused identity field stays empty.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email,omitempty"`
	WalletAddress string    `json:"walletAddress,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	LastLoginAt   time.Time `json:"lastLoginAt"`
}
