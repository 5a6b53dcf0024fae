package store

import "errors"

var (
	// ErrUnknownNamespace is returned when a namespace is not part of the store.
	ErrUnknownNamespace = errors.New("store: unknown namespace")

	// ErrNoProvider is returned when no provider of the store is mounted in the
	// context, or the mounted one has been torn down.
	ErrNoProvider = errors.New("store: no provider mounted")

	// ErrUnknownAction is returned when an action name is not declared by the model.
	ErrUnknownAction = errors.New("store: unknown action")

	// ErrStateType is returned when a namespace is read with the wrong state type.
	ErrStateType = errors.New("store: state type mismatch")

	// ErrInitialStateType is raised at mount when an initial-state override does
	// not have the model's state type.
	ErrInitialStateType = errors.New("store: initial state type mismatch")

	// ErrEffectPanic wraps a panic recovered from an effect body.
	ErrEffectPanic = errors.New("store: effect panicked")

	// ErrInvalidModel is returned by CreateStore for malformed models.
	ErrInvalidModel = errors.New("store: invalid model")
)
