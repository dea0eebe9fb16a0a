package storage

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrArticleNotFound = errors.New("article not found")
	ErrArticleExists   = errors.New("article already saved for this user and url")
)
