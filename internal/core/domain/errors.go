package domain

import "errors"

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrSessionExpired = errors.New("session expired")
var ErrForbidden = errors.New("access forbidden")
var ErrUserNotFound = errors.New("user not found")
var ErrSelfDelete = errors.New("cannot delete your own account")
