package models

import (
	"strings"

	"github.com/google/uuid"
)

// Records created optimistically get a local id until the remote store
// confirms them; the prefix lets the store layer tell the two apart when
// reconciling.
const localIDPrefix = "local-"

func NewLocalID() string {
	return localIDPrefix + uuid.NewString()
}

func IsLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}
