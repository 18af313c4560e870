// =============================================================================
// CSV to QDC Codebook Converter - Validation Module
// =============================================================================
//
// This module checks codebooks before they are persisted. It has two layers:
//
//   1. CheckSequence: structural rules over the flattened entity sequence.
//      - every category open is matched by exactly one closure
//      - a closure never appears without an open category
//      - categories do not nest
//      - a category carrying a description is already closed by its own tag,
//        so opening children under it would unbalance the document
//      - codes carry a non-empty name and identifier
//
//   2. CheckDocument: the rendered XML is well-formed (tokenised with
//      encoding/xml). Schema validation against the QDC XSD is not attempted.
//
// =============================================================================

package validation

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/CSV-to-QDC/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names reported in ValidationError.Rule.
const (
	RuleUnclosedCategory  = "unclosed_category"
	RuleStrayClosure      = "stray_closure"
	RuleNestedCategory    = "nested_category"
	RuleDescribedCategory = "described_category"
	RuleEmptyName         = "empty_name"
	RuleMissingID         = "missing_id"
	RuleDuplicateID       = "duplicate_id"
)

// ValidationError represents a single problem found in an entity sequence.
type ValidationError struct {
	// Severity is "error" for problems that make the document unusable and
	// "warning" for problems the import tool tolerates.
	Severity string

	// Rule is the rule that was violated.
	Rule string

	// Index is the position of the offending entity in the sequence.
	Index int

	// Name is the name of the offending code, if any.
	Name string

	// Message is a human-readable error message.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] entity %d (%s): %s",
		strings.ToUpper(e.Severity),
		e.Index,
		e.Name,
		e.Message,
	)
}

// ErrInvalidSequence is returned by Validate when CheckSequence reports errors.
var ErrInvalidSequence = errors.New("invalid entity sequence")

// =============================================================================
// SEQUENCE CHECKS
// =============================================================================

// CheckSequence validates the closure invariant and basic code fields.
//
// RETURNS:
//   - All problems found, in sequence order. Nil when the sequence is valid.
func CheckSequence(entities []types.Entity) []*ValidationError {
	var problems []*ValidationError

	report := func(severity, rule string, index int, name, format string, args ...any) {
		problems = append(problems, &ValidationError{
			Severity: severity,
			Rule:     rule,
			Index:    index,
			Name:     name,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	openIndex := -1
	openName := ""
	seen := make(map[string]int, len(entities))

	for i, entity := range entities {
		if entity.Kind == types.KindCategoryClose {
			if openIndex < 0 {
				report(SeverityError, RuleStrayClosure, i, "", "closure without an open category")
				continue
			}
			openIndex = -1
			openName = ""
			continue
		}

		code := entity.Code
		if strings.TrimSpace(code.Name) == "" {
			report(SeverityError, RuleEmptyName, i, code.Name, "code has an empty name")
		}
		if code.ID == "" {
			report(SeverityError, RuleMissingID, i, code.Name, "code has no guid")
		} else if first, dup := seen[code.ID]; dup {
			report(SeverityError, RuleDuplicateID, i, code.Name, "guid %s already used by entity %d", code.ID, first)
		} else {
			seen[code.ID] = i
		}

		if entity.Kind != types.KindCategoryOpen {
			continue
		}

		if openIndex >= 0 {
			report(SeverityError, RuleNestedCategory, i, code.Name,
				"category opened inside category %q (entity %d)", openName, openIndex)
		}
		if code.Description != "" {
			report(SeverityError, RuleDescribedCategory, i, code.Name,
				"category with a description closes itself and cannot hold children")
		}
		openIndex = i
		openName = code.Name
	}

	if openIndex >= 0 {
		report(SeverityError, RuleUnclosedCategory, openIndex, openName, "category is never closed")
	}

	return problems
}

// Validate runs CheckSequence and folds any error-severity problems into a
// single error wrapping ErrInvalidSequence.
func Validate(entities []types.Entity) error {
	problems := CheckSequence(entities)

	var fatal []*ValidationError
	for _, p := range problems {
		if p.Severity == SeverityError {
			fatal = append(fatal, p)
		}
	}
	if len(fatal) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrInvalidSequence, FormatErrors(fatal))
}

// =============================================================================
// DOCUMENT CHECKS
// =============================================================================

// CheckDocument verifies that a rendered codebook is well-formed XML and that
// its root element is a CodeBook.
func CheckDocument(document string) error {
	decoder := xml.NewDecoder(strings.NewReader(document))

	depth := 0
	rootSeen := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("malformed codebook XML: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if depth == 0 {
				if rootSeen {
					return fmt.Errorf("malformed codebook XML: multiple root elements")
				}
				if t.Name.Local != "CodeBook" {
					return fmt.Errorf("malformed codebook XML: unexpected root element %q", t.Name.Local)
				}
				rootSeen = true
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}

	if !rootSeen {
		return fmt.Errorf("malformed codebook XML: no root element")
	}

	return nil
}

// =============================================================================
// ERROR REPORTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("%d validation error(s):", len(errors)))
	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("\n%d. %s", i+1, err.Error()))
	}

	return builder.String()
}
