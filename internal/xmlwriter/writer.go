// =============================================================================
// CSV to QDC Codebook Converter - XML Writer Module
// =============================================================================
//
// This module is responsible for producing the QDC (QDA-XML codebook) document
// from the flattened entity sequence built by the loader.
//
// XML STRUCTURE:
//   The generated document has no indentation and no line breaks. The header
//   and footer are fixed byte strings the import tool relies on:
//
//   <?xml ...?><CodeBook ...><Codes>        <!-- Header -->
//     <Code color=".." guid=".." ...>       <!-- Category, left open -->
//       <Code guid=".." ... name=".."/>     <!-- Child code -->
//     </Code>                               <!-- Closure sentinel -->
//     <Code guid=".." ...><Description>..</Description></Code>
//   </Codes></CodeBook>                     <!-- Footer -->
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/CSV-to-QDC/internal/types"
)

// =============================================================================
// DOCUMENT ENVELOPE
// =============================================================================

// Namespace is the QDA-XML codebook namespace declared on the root element.
const Namespace = "urn:QDA-XML:codebook:1:0"

// Header opens the CodeBook and Codes elements.
const Header = `<?xml version="1.0" encoding="UTF-8" standalone="no" ?>` +
	`<CodeBook origin="NVivo 12 For Mac" xmlns="` + Namespace + `" ` +
	`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" ` +
	`xsi:schemaLocation="` + Namespace + ` Codebook.xsd"><Codes>`

// Footer closes the Codes and CodeBook elements.
const Footer = `</Codes></CodeBook>`

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate renders the full document for the given entities.
//
// An empty sequence yields exactly Header + Footer.
func Generate(entities []types.Entity) string {
	var buffer bytes.Buffer
	// bytes.Buffer writes never fail.
	_, _ = write(&buffer, entities)
	return buffer.String()
}

// WriteTo streams the full document to w.
//
// RETURNS:
//   - The number of bytes written.
//   - The first write error, if any.
func WriteTo(w io.Writer, entities []types.Entity) (int64, error) {
	n, err := write(w, entities)
	if err != nil {
		return n, fmt.Errorf("failed to write codebook: %w", err)
	}
	return n, nil
}

func write(w io.Writer, entities []types.Entity) (int64, error) {
	var total int64

	emit := func(s string) error {
		n, err := io.WriteString(w, s)
		total += int64(n)
		return err
	}

	if err := emit(Header); err != nil {
		return total, err
	}
	for _, entity := range entities {
		if err := emit(entity.Render()); err != nil {
			return total, err
		}
	}
	if err := emit(Footer); err != nil {
		return total, err
	}

	return total, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Escape escapes the five XML special characters.
//
// Rendering never escapes on its own; this is used by the loader when
// escaping is switched on in the configuration.
func Escape(s string) string {
	if !strings.ContainsAny(s, `&<>"'`) {
		return s
	}

	var buffer strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}
