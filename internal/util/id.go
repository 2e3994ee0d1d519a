package util

import (
	"strings"

	"github.com/google/uuid"
)

// CodigoCurto gera um identificador curto em maiúsculas derivado de um UUID v4.
func CodigoCurto() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
