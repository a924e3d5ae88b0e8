package types

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrCatNotFound    = errors.New("cat not found")
	ErrEventNotFound  = errors.New("event not found")
	ErrClinicNotFound = errors.New("clinic not found")
)
