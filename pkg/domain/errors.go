package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrTemplateNotFound is returned by template providers for unknown paths.
var ErrTemplateNotFound = errors.New("template not found")

// ErrDefaultTemplateMissing means the project was initialized without its default templates.
var ErrDefaultTemplateMissing = errors.New("default template missing")

// ErrUnknownActionType is returned when no constructor is registered for an action type.
var ErrUnknownActionType = errors.New("unknown action type")

// ErrScriptInvalid is wrapped by every script parsing or validation failure.
var ErrScriptInvalid = errors.New("invalid script")
