package utils

import (
	"regexp"

	"github.com/google/uuid"
)

// GenerateUUID generates a UUID v4 string.
func GenerateUUID() string {
	return uuid.New().String()
}

// Cmdlet names follow the Verb-Noun convention, but modules also expose
// plain aliases, so anything word-like with inner hyphens or dots passes.
var cmdletNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*([-.][A-Za-z0-9]+)*$`)

// IsValidCmdletName reports whether name is usable as a cmdlet path parameter.
func IsValidCmdletName(name string) bool {
	if name == "" || len(name) > 200 {
		return false
	}
	return cmdletNameRe.MatchString(name)
}
