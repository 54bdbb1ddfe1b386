package service

import "errors"

// Sentinel errors mapped to HTTP statuses by the REST layer.
var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvalidCode      = errors.New("invalid or expired code")
	ErrInvalidAddress   = errors.New("invalid EVM address format")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrNonceExpired     = errors.New("nonce not found or expired")
	ErrWalletExists     = errors.New("wallet address already exists")
	ErrWalletLimit      = errors.New("maximum number of wallets reached")
	ErrWalletNotFound   = errors.New("wallet address not found")
)
