// Package repository holds the data access layer for users, halls and
// videos. Sentinel errors defined here let handlers distinguish a missing
// record from a real database failure without inspecting driver errors.
package repository

import "errors"

// ErrHallNotFound is returned when a hall lookup fails.
var ErrHallNotFound = errors.New("hall not found")

// ErrVideoNotFound is returned when a video lookup fails.
var ErrVideoNotFound = errors.New("video not found")

// ErrUserNotFound is returned when a user lookup fails.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned by UserRepo.Create when the username is
// already taken.
var ErrUsernameExists = errors.New("username already exists")
