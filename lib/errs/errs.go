package errs

import "errors"

var ErrNotFound = errors.New("not found")

var ErrAlreadyExists = errors.New("already exists")

var ErrInternal = errors.New("internal error")

var ErrInvalidInput = errors.New("invalid input")

var ErrInvalidCredentials = errors.New("invalid username or password")

var ErrPasswordMismatch = errors.New("password and confirmation do not match")

var ErrUnknownSymbol = errors.New("unknown symbol")

var ErrQuoteUnavailable = errors.New("quote service unavailable")

var ErrInsufficientFunds = errors.New("insufficient funds")

var ErrInsufficientShares = errors.New("insufficient shares")
