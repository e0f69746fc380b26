package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrIO            = errors.New("io failure")
	ErrParse         = errors.New("parse error")
	ErrDataIntegrity = errors.New("data integrity violation")
	ErrFetch         = errors.New("fetch failed")
)
