package adapter

import "errors"

var (
	ErrNoFiles       = errors.New("relay rejected upload: no files")
	ErrUnauthorized  = errors.New("relay rejected upload: unauthorized")
	ErrRelayInternal = errors.New("relay internal error")
)
