// =============================================================================
// CSV to QDC Codebook Converter - Code List Loader
// =============================================================================
//
// The loader turns a project's code lists into the flat entity sequence of a
// codebook.
//
// MERGE ALGORITHM:
//   1. If the generic list is available, remove it from the category names and
//      read its rows. Each row's first column (lower-cased) becomes a bare code
//      name; its second column, if present, is that name's description.
//   2. Working names = category names ∪ bare names.
//   3. Sort working names lexicographically. This single order drives both the
//      output order and the colour cycle.
//   4. For each working name:
//        category -> open entity (title-cased, next colour), one child per row,
//                    then exactly one closure
//        bare     -> one leaf code with the stored description
//
// EXAMPLE:
//   lists: fruit, top-level-codes
//   fruit.csv           : apple,a fruit / banana
//   top-level-codes.csv : misc,other things
//
//   [Fruit #00FF00 (open)] [Apple "a fruit"] [Banana #C0C0C0] [close] [misc "other things"]
//
// =============================================================================

package codebook

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/CSV-to-QDC/internal/config"
	"github.com/ginjaninja78/CSV-to-QDC/internal/types"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// RowSource supplies the parsed rows of one code list.
// A list without a backing file must return an error wrapping fs.ErrNotExist.
type RowSource interface {
	Rows(project, list string) ([][]string, error)
}

// RowSourceFunc adapts a function to RowSource.
type RowSourceFunc func(project, list string) ([][]string, error)

// Rows implements RowSource.
func (f RowSourceFunc) Rows(project, list string) ([][]string, error) {
	return f(project, list)
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings controls how code lists become entities.
type Settings struct {
	// GenericList is the reserved list whose rows become bare codes.
	GenericList string

	// Palette is the category colour cycle.
	Palette []string

	// FallbackColour marks child codes built from malformed rows.
	FallbackColour string

	// ChildNames is config.ChildNamesPlain or config.ChildNamesPrefixed.
	ChildNames string

	// InheritCategoryColour colours well-formed children like their category.
	InheritCategoryColour bool

	// EscapeText XML-escapes labels and descriptions.
	EscapeText bool
}

// DefaultSettings returns the settings of the default configuration.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.Default())
}

// SettingsFromConfig extracts loader settings from the main configuration.
func SettingsFromConfig(cfg *config.MainConfig) Settings {
	return Settings{
		GenericList:           cfg.GenericList,
		Palette:               append([]string(nil), cfg.Palette...),
		FallbackColour:        cfg.FallbackColour,
		ChildNames:            cfg.ChildNames,
		InheritCategoryColour: cfg.InheritCategoryColour,
		EscapeText:            cfg.EscapeText,
	}
}

// =============================================================================
// LOAD REPORT
// =============================================================================

// LoadReport summarises one load.
type LoadReport struct {
	// Categories is the number of categories emitted.
	Categories int

	// Children is the number of codes emitted inside categories, fallbacks
	// included.
	Children int

	// BareCodes is the number of codes emitted from the generic list.
	BareCodes int

	// MalformedRows counts rows recovered with a fallback.
	MalformedRows int

	// SkippedLists names category lists that could not be read.
	SkippedLists []string
}

// =============================================================================
// LOADER
// =============================================================================

// Loader builds the entity sequence for one project. A Loader is used for a
// single Load call; it owns its colour cycle.
type Loader struct {
	project  string
	source   RowSource
	settings Settings
	logger   *zap.Logger
	labels   *labeler
	report   LoadReport
}

// NewLoader creates a loader for project. A nil logger discards anomalies.
func NewLoader(project string, source RowSource, settings Settings, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		project:  project,
		source:   source,
		settings: settings,
		logger:   logger.With(zap.String("project", project)),
		labels:   newLabeler(settings),
	}
}

// Load builds the entity sequence from the available list names.
//
// PARAMETERS:
//   - available: The code-list names discovered for the project.
//
// RETURNS:
//   - The flat, ordered entity sequence.
//   - A report of what was emitted and recovered.
//   - An error wrapping ErrMissingGenericFile if the generic list is
//     available but unreadable. Other anomalies are logged, not returned.
func (l *Loader) Load(available []string) ([]types.Entity, LoadReport, error) {
	l.report = LoadReport{}

	categories := make(map[string]bool, len(available))
	working := make(map[string]bool, len(available))
	descriptions := make(map[string]string)

	hasGeneric := false
	for _, name := range available {
		if name == l.settings.GenericList {
			hasGeneric = true
			continue
		}
		categories[name] = true
		working[name] = true
	}

	// =========================================================================
	// STEP 1: MERGE THE GENERIC LIST
	// =========================================================================

	if hasGeneric {
		rows, err := l.source.Rows(l.project, l.settings.GenericList)
		if err != nil {
			l.logger.Error("generic code list unreadable",
				zap.String("list", l.settings.GenericList),
				zap.Error(err))
			return nil, l.report, fmt.Errorf("%w: %s/%s: %w",
				ErrMissingGenericFile, l.project, l.settings.GenericList, err)
		}

		for i, row := range rows {
			if len(row) == 0 || row[0] == "" {
				l.malformed(l.settings.GenericList, i, row, "row has no label; skipped")
				continue
			}

			name := strings.ToLower(row[0])
			working[name] = true

			if len(row) < 2 {
				l.malformed(l.settings.GenericList, i, row, "row has no description column")
				descriptions[name] = ""
				continue
			}
			descriptions[name] = row[1]
		}
	}

	// =========================================================================
	// STEP 2-3: SORT THE WORKING NAMES
	// =========================================================================

	names := make([]string, 0, len(working))
	for name := range working {
		names = append(names, name)
	}
	slices.Sort(names)

	// =========================================================================
	// STEP 4: EMIT ENTITIES
	// =========================================================================

	colours := NewColorCycle(l.settings.Palette)
	var entities []types.Entity

	for _, name := range names {
		colour := colours.Next()

		if categories[name] {
			entities = append(entities, l.category(name, colour)...)
			continue
		}

		description, ok := descriptions[name]
		if !ok {
			l.logger.Warn("no description recorded for bare code",
				zap.String("code", name))
		}
		var opts []types.CodeOption
		if description != "" {
			opts = append(opts, types.WithDescription(l.labels.Description(description)))
		}
		entities = append(entities, types.Leaf(types.NewCode(l.labels.Bare(name), opts...)))
		l.report.BareCodes++
	}

	return entities, l.report, nil
}

// category emits one category group: open entity, children, closure.
// An unreadable list emits nothing.
func (l *Loader) category(name, colour string) []types.Entity {
	rows, err := l.source.Rows(l.project, name)
	if err != nil {
		level := l.logger.Error
		if errors.Is(err, fs.ErrNotExist) {
			level = l.logger.Warn
		}
		level("code list unreadable; category skipped",
			zap.String("list", name),
			zap.Error(err))
		l.report.SkippedLists = append(l.report.SkippedLists, name)
		return nil
	}

	group := make([]types.Entity, 0, len(rows)+2)
	group = append(group, types.CategoryOpen(types.NewCode(
		l.labels.Title(name),
		types.WithColour(colour),
		types.AsCategory(),
	)))

	for i, row := range rows {
		if len(row) == 0 || row[0] == "" {
			l.malformed(name, i, row, "row has no label; skipped")
			continue
		}

		label, description, ok := splitRow(row)
		if !ok {
			l.malformed(name, i, row, "row is not (label, description); using fallback")
			group = append(group, types.Leaf(types.NewCode(
				l.labels.Child(name, row[0]),
				types.WithColour(l.settings.FallbackColour),
			)))
			l.report.Children++
			continue
		}

		opts := []types.CodeOption{types.WithDescription(l.labels.Description(description))}
		if l.settings.InheritCategoryColour {
			opts = append(opts, types.WithColour(colour))
		}
		group = append(group, types.Leaf(types.NewCode(l.labels.Child(name, label), opts...)))
		l.report.Children++
	}

	group = append(group, types.Closure())

	l.report.Categories++

	return group
}

// splitRow unpacks a well-formed (label, description) row: exactly two
// columns with a non-empty description.
func splitRow(row []string) (string, string, bool) {
	if len(row) != 2 || row[1] == "" {
		return "", "", false
	}
	return row[0], row[1], true
}

// malformed logs a recovered row anomaly.
func (l *Loader) malformed(list string, index int, row []string, msg string) {
	l.report.MalformedRows++
	l.logger.Warn(msg,
		zap.String("list", list),
		zap.Int("row", index+1),
		zap.Strings("columns", row),
		zap.Error(ErrMalformedRow))
}
