// Package langtag normalises BCP-47 language tags.
package langtag

import (
	"strings"

	"golang.org/x/text/language"
)

// Canonical returns the canonical form of tag ("en-us" becomes "en-US").
// Blank input yields fallback; tags that do not parse are returned trimmed
// but otherwise untouched.
func Canonical(tag, fallback string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return fallback
	}
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	return t.String()
}

// Base returns the ISO 639 base language of tag ("en-US" becomes "en"), or
// "" when tag is blank or unparseable.
func Base(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	t, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	b, conf := t.Base()
	if conf == language.No {
		return ""
	}
	return b.String()
}
