package index

import "errors"

var (
	ErrIndexExists  = errors.New("index: already exists")
	ErrUnknownIndex = errors.New("index: unknown index")
	ErrInvalidName  = errors.New("index: invalid index name")
	ErrEmptyDoc     = errors.New("index: document has no fields")
)
