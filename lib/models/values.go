package models

import (
	"strings"

	"golang.org/x/text/cases"
)

// Canonical folds case and trims surrounding whitespace, so that streamer
// logins and game titles compare equal regardless of how they were typed.
func Canonical(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

type Destination struct {
	Platform   string
	Identifier string
}

func (d Destination) IsZero() bool {
	return d.Platform == "" || d.Identifier == ""
}
