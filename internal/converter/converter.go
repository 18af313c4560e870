// =============================================================================
// CSV to QDC Codebook Converter - Converter Module
// =============================================================================
//
// This module runs the conversion pipeline for one project, from code lists to
// a written codebook, and fans the pipeline out over many projects.
//
// CONVERSION PIPELINE:
//   1. Open the project's error log (skipped on dry runs)
//   2. Build the codebook: load code lists, merge, sort, validate
//   3. Render the document
//   4. Optionally check the rendered document
//   5. Write the output file (skipped on dry runs)
//
// CONCURRENCY:
//   RunAll processes projects on a bounded errgroup. A failing project never
//   stops the others; every project gets a Result, in input order.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/CSV-to-QDC/internal/codebook"
	"github.com/ginjaninja78/CSV-to-QDC/internal/config"
	"github.com/ginjaninja78/CSV-to-QDC/internal/logging"
	"github.com/ginjaninja78/CSV-to-QDC/internal/validation"
	"github.com/ginjaninja78/CSV-to-QDC/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single project.
type Result struct {
	// Project is the project that was processed.
	Project string

	// OutputFile is the path to the written codebook.
	// This is empty on dry runs and failures.
	OutputFile string

	// Document is the rendered codebook. It is only kept on dry runs.
	Document string

	// Issues lists problems found by the document check.
	Issues []string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	Categories    int
	Children      int
	BareCodes     int
	MalformedRows int
	SkippedLists  int

	// ProcessingTime is the time taken to process the project.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options configure a Converter.
type Options struct {
	// Config is the main configuration.
	Config *config.MainConfig

	// Files persists codebooks and locates error logs.
	Files *utils.FileManager

	// Source reads code lists.
	Source codebook.RowSource

	// Logger is the base logger. Nil discards logs.
	Logger *zap.Logger

	// DryRun renders without writing the codebook or the error log.
	DryRun bool

	// Check validates the rendered document and reports Issues.
	Check bool
}

// Converter handles the conversion of a single project.
type Converter struct {
	project string
	index   codebook.Index
	opts    Options
}

// New creates a new Converter for project.
//
// PARAMETERS:
//   - project: The project name.
//   - index: The discovered projects.
//   - opts: Collaborators and run mode.
func New(project string, index codebook.Index, opts Options) *Converter {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	return &Converter{project: project, index: index, opts: opts}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the project.
//
// RETURNS:
//   - A Result describing the outcome. Run never panics on bad input; all
//     failures are reported through Result.Error.
func (c *Converter) Run(ctx context.Context) Result {
	startTime := time.Now()
	result := Result{Project: c.project}
	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	// =========================================================================
	// STEP 1: OPEN THE ERROR LOG
	// =========================================================================

	logger := c.opts.Logger
	if !c.opts.DryRun && c.opts.Files != nil {
		if _, known := c.index[c.project]; known {
			projectLogger, closeLog, err := logging.ForProject(logger, c.opts.Files.ErrorLogPath(c.project))
			if err != nil {
				result.Error = err
				return result
			}
			defer func() {
				if err := closeLog(); err != nil {
					logger.Warn("failed to close error log", zap.String("project", c.project), zap.Error(err))
				}
			}()
			logger = projectLogger
		}
	}

	logger.Debug("processing project", zap.String("project", c.project))

	// =========================================================================
	// STEP 2: BUILD THE CODEBOOK
	// =========================================================================

	var persister codebook.Persister
	if c.opts.Files != nil {
		persister = c.opts.Files
	}

	cb := codebook.New(c.project, c.index, codebook.Options{
		Source:    c.opts.Source,
		Persister: persister,
		Logger:    logger,
		Settings:  codebook.SettingsFromConfig(c.opts.Config),
	})

	report := cb.Report()
	result.Stats.Categories = report.Categories
	result.Stats.Children = report.Children
	result.Stats.BareCodes = report.BareCodes
	result.Stats.MalformedRows = report.MalformedRows
	result.Stats.SkippedLists = len(report.SkippedLists)

	if err := cb.Err(); err != nil {
		result.Error = err
		return result
	}

	// =========================================================================
	// STEP 3-4: RENDER AND CHECK
	// =========================================================================

	document := cb.Render()

	if c.opts.Check {
		for _, problem := range validation.CheckSequence(cb.Entities()) {
			result.Issues = append(result.Issues, problem.Error())
		}
		if err := validation.CheckDocument(document); err != nil {
			result.Issues = append(result.Issues, err.Error())
		}
	}

	if c.opts.DryRun {
		result.Document = document
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 5: WRITE THE OUTPUT FILE
	// =========================================================================

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	path, err := cb.Write()
	if err != nil {
		result.Error = err
		return result
	}

	result.OutputFile = path
	result.Success = true
	return result
}

// =============================================================================
// BATCH PROCESSING
// =============================================================================

// RunAll processes projects with at most limit running at once.
//
// PARAMETERS:
//   - ctx: Cancelling ctx stops projects that have not started writing.
//   - projects: The projects to process.
//   - index: The discovered projects.
//   - opts: Options shared by every project.
//   - limit: The maximum number of concurrent projects. Values below 1 mean 1.
//
// RETURNS:
//   - One Result per project, in the order of projects.
func RunAll(ctx context.Context, projects []string, index codebook.Index, opts Options, limit int) []Result {
	if limit < 1 {
		limit = 1
	}

	results := make([]Result, len(projects))

	var g errgroup.Group
	g.SetLimit(limit)

	for i, project := range projects {
		i, project := i, project
		g.Go(func() error {
			results[i] = New(project, index, opts).Run(ctx)
			return nil
		})
	}

	// Workers never return errors; failures live in the results.
	_ = g.Wait()

	return results
}

// Summary counts successes and failures.
func Summary(results []Result) (succeeded, failed int) {
	for _, r := range results {
		if r.Success {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// String formats a one-line report of the result.
func (r Result) String() string {
	if !r.Success {
		return fmt.Sprintf("%s: %v", r.Project, r.Error)
	}
	if r.OutputFile == "" {
		return fmt.Sprintf("%s: %d categories, %d codes, %d bare codes (dry run)",
			r.Project, r.Stats.Categories, r.Stats.Children, r.Stats.BareCodes)
	}
	return fmt.Sprintf("%s -> %s", r.Project, r.OutputFile)
}
