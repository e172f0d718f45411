package repositories

import "errors"

// ErrDuplicateIdentity is returned when a unique index (mobile or email) rejects a write
var ErrDuplicateIdentity = errors.New("duplicate identity")
