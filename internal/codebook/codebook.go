// =============================================================================
// CSV to QDC Codebook Converter - Codebook Aggregate
// =============================================================================
//
// A Codebook is the exported document of one project. It is built eagerly:
// New resolves the project, runs the loader and validates the resulting
// sequence. The entities never change afterwards.
//
// LIFECYCLE:
//   New(project) ──► project unknown ──► null codebook (Err = ErrUnknownProject)
//        │
//        ├────────► load fails ───────► failed codebook (Err = load error)
//        │
//        └────────► loaded ───────────► Render / Write any number of times
//
// Write never touches the filesystem for a null or failed codebook.
//
// =============================================================================

package codebook

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ginjaninja78/CSV-to-QDC/internal/types"
	"github.com/ginjaninja78/CSV-to-QDC/internal/validation"
	"github.com/ginjaninja78/CSV-to-QDC/internal/xmlwriter"
)

// Index maps a project name to its available code-list names.
type Index map[string][]string

// Persister stores a rendered codebook and returns where it went.
type Persister interface {
	Persist(project, text string) (string, error)
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(project, text string) (string, error)

// Persist implements Persister.
func (f PersisterFunc) Persist(project, text string) (string, error) {
	return f(project, text)
}

// Options are the collaborators and settings of a Codebook.
type Options struct {
	// Source supplies code-list rows. Required for known projects.
	Source RowSource

	// Persister stores rendered codebooks. Write fails without one.
	Persister Persister

	// Logger receives anomalies for this project only. Nil discards them.
	Logger *zap.Logger

	// Settings control the loader.
	Settings Settings
}

// Codebook is the aggregate root for one project.
type Codebook struct {
	name      string
	lists     []string
	entities  []types.Entity
	report    LoadReport
	err       error
	persister Persister
	logger    *zap.Logger
}

// New builds the codebook for project.
//
// PARAMETERS:
//   - project: The project name to look up in index.
//   - index: The discovered projects and their code-list names.
//   - opts: Collaborators and loader settings.
//
// RETURNS:
//   - A codebook. It is never nil; check Err for unknown projects and load
//     failures.
func New(project string, index Index, opts Options) *Codebook {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Codebook{
		persister: opts.Persister,
		logger:    logger,
	}

	lists, ok := index[project]
	if !ok {
		c.err = fmt.Errorf("%w: %q", ErrUnknownProject, project)
		return c
	}

	c.name = project
	c.lists = append([]string(nil), lists...)

	if opts.Source == nil {
		c.err = fmt.Errorf("codebook %s: no row source configured", project)
		return c
	}

	entities, report, err := NewLoader(project, opts.Source, opts.Settings, logger).Load(c.lists)
	c.report = report
	if err != nil {
		c.err = fmt.Errorf("failed to load codebook %s: %w", project, err)
		return c
	}

	if err := validation.Validate(entities); err != nil {
		logger.Error("codebook failed validation", zap.String("project", project), zap.Error(err))
		c.err = fmt.Errorf("codebook %s: %w", project, err)
		return c
	}

	c.entities = entities
	return c
}

// Name returns the project name, or "" for a null codebook.
func (c *Codebook) Name() string {
	return c.name
}

// CodeLists returns the code-list names the codebook was built from.
func (c *Codebook) CodeLists() []string {
	return append([]string(nil), c.lists...)
}

// Entities returns a copy of the entity sequence.
func (c *Codebook) Entities() []types.Entity {
	return append([]types.Entity(nil), c.entities...)
}

// Report returns the loader report.
func (c *Codebook) Report() LoadReport {
	return c.report
}

// Err reports why the codebook is unusable, or nil.
func (c *Codebook) Err() error {
	return c.err
}

// IsNull reports whether the codebook has no backing project.
func (c *Codebook) IsNull() bool {
	return errors.Is(c.err, ErrUnknownProject)
}

// Render returns Header + every entity fragment + Footer.
func (c *Codebook) Render() string {
	return xmlwriter.Generate(c.entities)
}

// String implements fmt.Stringer.
func (c *Codebook) String() string {
	return c.Render()
}

// Write renders the codebook and hands it to the persister.
//
// RETURNS:
//   - The path reported by the persister.
//   - Err() for null and failed codebooks, without any I/O.
//   - An error wrapping ErrPersistence if the persister fails. The failure
//     is logged; there are no retries.
func (c *Codebook) Write() (string, error) {
	if c.err != nil {
		return "", c.err
	}
	if c.persister == nil {
		return "", fmt.Errorf("%w: %s: no persister configured", ErrPersistence, c.name)
	}

	path, err := c.persister.Persist(c.name, c.Render())
	if err != nil {
		c.logger.Error("failed to write codebook", zap.String("project", c.name), zap.Error(err))
		return "", fmt.Errorf("%w: %s: %w", ErrPersistence, c.name, err)
	}

	c.logger.Info("codebook written", zap.String("project", c.name), zap.String("path", path))
	return path, nil
}
