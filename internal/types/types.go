// =============================================================================
// CSV to QDC Codebook Converter - Shared Types
// =============================================================================
//
// This package contains the entity model shared by the loader, the XML writer
// and the validator. Keeping it here avoids import cycles between:
//   - codebook
//   - validation
//   - xmlwriter
//
// FLATTENED TREE:
//   A codebook is a tree (categories own codes), but it is stored as a flat,
//   ordered sequence of entities. A category is opened by a KindCategoryOpen
//   entity and closed by a KindCategoryClose entity; every entity between the
//   two belongs to the category.
//
//   [CategoryOpen Fruit] [Code Apple] [Code Banana] [CategoryClose] [Code misc]
//
// =============================================================================

package types

import (
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// ENTITY KINDS
// =============================================================================

// EntityKind tags the variant held by an Entity.
type EntityKind int

const (
	// KindCode is a leaf code, either a child of a category or a bare code.
	KindCode EntityKind = iota

	// KindCategoryOpen starts a category. It must be followed by its children
	// and then by exactly one KindCategoryClose.
	KindCategoryOpen

	// KindCategoryClose ends the most recently opened category.
	KindCategoryClose
)

// String returns the kind name used in logs and validation messages.
func (k EntityKind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindCategoryOpen:
		return "category-open"
	case KindCategoryClose:
		return "category-close"
	default:
		return "unknown"
	}
}

// ClosingTag is the literal emitted for a KindCategoryClose entity.
const ClosingTag = "</Code>"

// =============================================================================
// CODE
// =============================================================================

// Code is a single QDC code or category node.
type Code struct {
	// ID is a random UUID assigned by NewCode. It is stable for the lifetime
	// of the value and never reused.
	ID string

	// Name is the rendered display label. For prefixed children this already
	// contains "<Category> - <Code>".
	Name string

	// Colour is an optional "#RRGGBB" value. Empty means no color attribute.
	Colour string

	// IsCodable renders as isCodable="true" or isCodable="false".
	IsCodable bool

	// IsCategory leaves the element open (">") when there is no description.
	IsCategory bool

	// Description is optional free text rendered as a nested element.
	Description string
}

// CodeOption configures a Code built by NewCode.
type CodeOption func(*Code)

// WithColour sets the color attribute.
func WithColour(colour string) CodeOption {
	return func(c *Code) { c.Colour = colour }
}

// WithDescription sets the nested description.
func WithDescription(description string) CodeOption {
	return func(c *Code) { c.Description = description }
}

// NotCodable marks the code as isCodable="false".
func NotCodable() CodeOption {
	return func(c *Code) { c.IsCodable = false }
}

// AsCategory marks the code as a category.
func AsCategory() CodeOption {
	return func(c *Code) { c.IsCategory = true }
}

// NewCode creates a codable, non-category Code with a fresh identifier.
func NewCode(name string, opts ...CodeOption) Code {
	c := Code{
		ID:        uuid.New().String(),
		Name:      name,
		IsCodable: true,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Render returns the XML fragment for this code.
//
// GRAMMAR:
//   <Code {colour-attr}guid="{id}" isCodable="{true|false}" name="{name}"{tail}
//
//   colour-attr : "" or `color="{colour}" ` (trailing space kept)
//   tail        : "><Description>{d}</Description></Code>" when a description is set,
//                 otherwise "/>" for a code and ">" for a category.
//
// NOTE: Name and Description are written verbatim. Callers that cannot
// guarantee safe text must escape before building the Code.
func (c Code) Render() string {
	var b strings.Builder

	b.WriteString("<Code ")
	if c.Colour != "" {
		b.WriteString(`color="`)
		b.WriteString(c.Colour)
		b.WriteString(`" `)
	}
	b.WriteString(`guid="`)
	b.WriteString(c.ID)
	b.WriteString(`" isCodable="`)
	if c.IsCodable {
		b.WriteString("true")
	} else {
		b.WriteString("false")
	}
	b.WriteString(`" name="`)
	b.WriteString(c.Name)
	b.WriteString(`"`)

	switch {
	case c.Description != "":
		b.WriteString("><Description>")
		b.WriteString(c.Description)
		b.WriteString("</Description>")
		b.WriteString(ClosingTag)
	case c.IsCategory:
		b.WriteString(">")
	default:
		b.WriteString("/>")
	}

	return b.String()
}

// =============================================================================
// ENTITY
// =============================================================================

// Entity is one element of the flattened codebook sequence.
// Code is the zero value for KindCategoryClose.
type Entity struct {
	Kind EntityKind
	Code Code
}

// CategoryOpen wraps a category code. The code is forced to IsCategory.
func CategoryOpen(c Code) Entity {
	c.IsCategory = true
	return Entity{Kind: KindCategoryOpen, Code: c}
}

// Leaf wraps a non-category code.
func Leaf(c Code) Entity {
	c.IsCategory = false
	return Entity{Kind: KindCode, Code: c}
}

// Closure returns the sentinel that closes the current category.
func Closure() Entity {
	return Entity{Kind: KindCategoryClose}
}

// Render returns the XML fragment for the entity.
func (e Entity) Render() string {
	if e.Kind == KindCategoryClose {
		return ClosingTag
	}
	return e.Code.Render()
}
