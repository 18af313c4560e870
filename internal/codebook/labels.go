package codebook

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ginjaninja78/CSV-to-QDC/internal/config"
	"github.com/ginjaninja78/CSV-to-QDC/internal/xmlwriter"
)

// =============================================================================
// LABEL TRANSFORMATIONS
// =============================================================================

// labeler turns raw code-list text into rendered names and descriptions.
type labeler struct {
	title      cases.Caser
	childNames string
	escape     bool
}

func newLabeler(settings Settings) *labeler {
	return &labeler{
		title:      cases.Title(language.Und),
		childNames: settings.ChildNames,
		escape:     settings.EscapeText,
	}
}

// Title title-cases a label: "fruit salad" becomes "Fruit Salad".
func (l *labeler) Title(s string) string {
	return l.text(l.title.String(strings.TrimSpace(s)))
}

// Child builds the name of a code inside category.
//
// EXAMPLE:
//   plain    : "Apple"
//   prefixed : "Fruit - Apple"
func (l *labeler) Child(category, label string) string {
	name := l.Title(label)
	if l.childNames == config.ChildNamesPrefixed {
		return l.Title(category) + " - " + name
	}
	return name
}

// text applies escaping when enabled.
func (l *labeler) text(s string) string {
	if l.escape {
		return xmlwriter.Escape(s)
	}
	return s
}

// Description prepares free text for the Description element.
func (l *labeler) Description(s string) string {
	return l.text(strings.TrimSpace(s))
}

// Bare prepares a generic-list name, which is already lower-cased.
func (l *labeler) Bare(s string) string {
	return l.text(s)
}
