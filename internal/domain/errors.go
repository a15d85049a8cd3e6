package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// tag does not exist in the guild.
// Chat handlers turn this into a "not found" / "doesn't exist" reply;
// HTTP handlers map it to 404.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned by repo.TagRepo.Create when the storage
// engine rejects the insert because (guild_id, name) is already taken.
var ErrAlreadyExists = errors.New("already exists")

// ErrNotOwner is returned by service functions when a user tries to mutate
// a tag recorded under a different user id.
var ErrNotOwner = errors.New("not owner")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. empty name or content).
var ErrValidation = errors.New("validation error")
