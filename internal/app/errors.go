package app

import (
	"errors"

	"github.com/example/elemcat/internal/core/errkind"
)

// isNotFound reports whether a repository lookup failed because the row is missing.
func isNotFound(err error) bool {
	return errors.Is(err, errkind.ErrNotFound)
}
