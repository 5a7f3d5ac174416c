package objstore

import "errors"

var (
	ErrNotFound      = errors.New("objstore: not found")
	ErrAlreadyExists = errors.New("objstore: already exists")
	ErrBackend       = errors.New("objstore: backend error")
)
