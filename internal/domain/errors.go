package domain

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrProvider       = errors.New("room provider failed")
	ErrStorage        = errors.New("storage failed")
	ErrTokenSigning   = errors.New("token signing failed")
	ErrRoleNotAllowed = errors.New("role not allowed")
	ErrRoomNotFound   = errors.New("room not found")
)
