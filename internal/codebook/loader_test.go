package codebook

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ginjaninja78/CSV-to-QDC/internal/config"
	"github.com/ginjaninja78/CSV-to-QDC/internal/types"
	"github.com/ginjaninja78/CSV-to-QDC/internal/xmlwriter"
)

// memorySource serves rows from memory. Lists absent from the map behave like
// missing files.
type memorySource map[string][][]string

func (m memorySource) Rows(project, list string) ([][]string, error) {
	rows, ok := m[list]
	if !ok {
		return nil, fmt.Errorf("code list %s/%s: %w", project, list, fs.ErrNotExist)
	}
	return rows, nil
}

// shape is the comparable part of an entity; IDs are random.
type shape struct {
	Kind        types.EntityKind
	Name        string
	Colour      string
	Description string
}

func shapes(entities []types.Entity) []shape {
	out := make([]shape, len(entities))
	for i, e := range entities {
		out[i] = shape{Kind: e.Kind, Name: e.Code.Name, Colour: e.Code.Colour, Description: e.Code.Description}
	}
	return out
}

func open(name, colour string) shape {
	return shape{Kind: types.KindCategoryOpen, Name: name, Colour: colour}
}

func code(name, colour, description string) shape {
	return shape{Kind: types.KindCode, Name: name, Colour: colour, Description: description}
}

var closeShape = shape{Kind: types.KindCategoryClose}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestLoadCategoryWithMalformedRow(t *testing.T) {
	logger, logs := observed()
	src := memorySource{"fruit": {{"apple", "a fruit"}, {"banana", ""}}}

	entities, report, err := NewLoader("demo", src, DefaultSettings(), logger).Load([]string{"fruit"})
	require.NoError(t, err)

	want := []shape{
		open("Fruit", config.DefaultPalette[0]),
		code("Apple", "", "a fruit"),
		code("Banana", "#C0C0C0", ""),
		closeShape,
	}
	if diff := cmp.Diff(want, shapes(entities)); diff != "" {
		t.Errorf("entities mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, LoadReport{Categories: 1, Children: 2, MalformedRows: 1}, report)

	malformed := logs.FilterMessageSnippet("fallback").All()
	require.Len(t, malformed, 1)
	assert.Equal(t, "demo", malformed[0].ContextMap()["project"])
	assert.Equal(t, "fruit", malformed[0].ContextMap()["list"])
	assert.Equal(t, int64(2), malformed[0].ContextMap()["row"])

	doc := xmlwriter.Generate(entities)
	assert.Contains(t, doc, `name="Apple"`)
	assert.Contains(t, doc, `name="Banana"`)
	assert.Equal(t, 1, countClosures(entities))
}

func TestLoadGenericOnly(t *testing.T) {
	settings := DefaultSettings()
	settings.GenericList = "nodes"
	src := memorySource{"nodes": {{"standalone", "desc text"}}}

	entities, report, err := NewLoader("demo2", src, settings, nil).Load([]string{"nodes"})
	require.NoError(t, err)

	assert.Equal(t, []shape{code("standalone", "", "desc text")}, shapes(entities))
	assert.Equal(t, 0, countClosures(entities))
	assert.Equal(t, 1, report.BareCodes)
	assert.Equal(t, 0, report.Categories)
}

func TestLoadMergesGenericIntoSortedOrder(t *testing.T) {
	logger, logs := observed()
	palette := []string{"#000001", "#000002", "#000003"}
	settings := DefaultSettings()
	settings.Palette = palette

	src := memorySource{
		"top-level-codes": {{"Misc", "other things"}, {"Beta"}, {"fruit", "duplicate of a category"}},
		"fruit":           {{"apple", "a fruit"}},
		"veg":             {{"leek", "a veg"}},
	}

	entities, report, err := NewLoader("p", src, settings, logger).Load([]string{"fruit", "top-level-codes", "veg"})
	require.NoError(t, err)

	// Sorted working names: beta, fruit, misc, veg. Colour follows position.
	want := []shape{
		code("beta", "", ""),
		open("Fruit", "#000002"),
		code("Apple", "", "a fruit"),
		closeShape,
		code("misc", "", "other things"),
		open("Veg", "#000001"),
		code("Leek", "", "a veg"),
		closeShape,
	}
	if diff := cmp.Diff(want, shapes(entities)); diff != "" {
		t.Errorf("entities mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 2, report.Categories)
	assert.Equal(t, 2, report.BareCodes)
	assert.Equal(t, 1, report.MalformedRows)
	assert.Equal(t, 1, logs.FilterMessage("row has no description column").Len())
}

func TestLoadIsDeterministic(t *testing.T) {
	src := memorySource{
		"top-level-codes": {{"zeta", "z"}, {"alpha", "a"}},
		"b":               {{"x", "y"}},
		"a":               {{"x", "y"}},
	}
	lists := []string{"top-level-codes", "b", "a"}

	first, _, err := NewLoader("p", src, DefaultSettings(), nil).Load(lists)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, _, err := NewLoader("p", src, DefaultSettings(), nil).Load(lists)
		require.NoError(t, err)
		assert.Equal(t, shapes(first), shapes(again))
	}
}

func TestLoadChildNamePolicy(t *testing.T) {
	settings := DefaultSettings()
	settings.ChildNames = config.ChildNamesPrefixed
	settings.InheritCategoryColour = true
	src := memorySource{"fruit salad": {{"green apple", "tart"}, {"pear"}}}

	entities, _, err := NewLoader("p", src, settings, nil).Load([]string{"fruit salad"})
	require.NoError(t, err)

	colour := config.DefaultPalette[0]
	assert.Equal(t, []shape{
		open("Fruit Salad", colour),
		code("Fruit Salad - Green Apple", colour, "tart"),
		code("Fruit Salad - Pear", "#C0C0C0", ""),
		closeShape,
	}, shapes(entities))
}

func TestLoadEscapeText(t *testing.T) {
	settings := DefaultSettings()
	settings.EscapeText = true
	src := memorySource{
		"fruit & veg":     {{"tools & dies", `say "hi"`}},
		"top-level-codes": {{"<misc>", "a & b"}},
	}

	entities, _, err := NewLoader("p", src, settings, nil).Load([]string{"fruit & veg", "top-level-codes"})
	require.NoError(t, err)

	assert.Equal(t, []shape{
		code("&lt;misc&gt;", "", "a &amp; b"),
		open("Fruit &amp; Veg", config.DefaultPalette[1]),
		code("Tools &amp; Dies", "", "say &quot;hi&quot;"),
		closeShape,
	}, shapes(entities))
}

func TestLoadMissingGenericFileFails(t *testing.T) {
	logger, logs := observed()
	src := memorySource{"fruit": {{"apple", "a fruit"}}}

	entities, _, err := NewLoader("p", src, DefaultSettings(), logger).Load([]string{"fruit", "top-level-codes"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingGenericFile))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Nil(t, entities)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestLoadMissingCategoryFileIsSkipped(t *testing.T) {
	logger, logs := observed()
	src := memorySource{"veg": {{"leek", "a veg"}}}

	entities, report, err := NewLoader("p", src, DefaultSettings(), logger).Load([]string{"fruit", "veg"})
	require.NoError(t, err)

	// fruit keeps its colour slot even though it is skipped.
	assert.Equal(t, []shape{
		open("Veg", config.DefaultPalette[1]),
		code("Leek", "", "a veg"),
		closeShape,
	}, shapes(entities))
	assert.Equal(t, []string{"fruit"}, report.SkippedLists)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestLoadEmptyCategory(t *testing.T) {
	src := memorySource{"fruit": nil}

	entities, _, err := NewLoader("p", src, DefaultSettings(), nil).Load([]string{"fruit"})
	require.NoError(t, err)
	assert.Equal(t, []shape{open("Fruit", config.DefaultPalette[0]), closeShape}, shapes(entities))
}

func TestLoadSkipsUnlabelledRows(t *testing.T) {
	src := memorySource{
		"fruit":           {{"", "orphan description"}, {"apple", "a fruit", "extra"}},
		"top-level-codes": {{"", "nothing"}},
	}

	entities, report, err := NewLoader("p", src, DefaultSettings(), nil).Load([]string{"fruit", "top-level-codes"})
	require.NoError(t, err)

	assert.Equal(t, []shape{
		open("Fruit", config.DefaultPalette[0]),
		code("Apple", "#C0C0C0", ""),
		closeShape,
	}, shapes(entities))
	assert.Equal(t, 3, report.MalformedRows)
	assert.Equal(t, 1, report.Children)
}

func TestLoadCategoryGroupsAreContiguous(t *testing.T) {
	src := memorySource{
		"a": {{"one", "1"}, {"two"}, {"three", "3"}},
		"b": {{"four", "4"}},
	}

	entities, _, err := NewLoader("p", src, DefaultSettings(), nil).Load([]string{"a", "b"})
	require.NoError(t, err)

	kinds := make([]types.EntityKind, len(entities))
	for i, e := range entities {
		kinds[i] = e.Kind
	}
	assert.Equal(t, []types.EntityKind{
		types.KindCategoryOpen, types.KindCode, types.KindCode, types.KindCode, types.KindCategoryClose,
		types.KindCategoryOpen, types.KindCode, types.KindCategoryClose,
	}, kinds)
}

func countClosures(entities []types.Entity) int {
	n := 0
	for _, e := range entities {
		if e.Kind == types.KindCategoryClose {
			n++
		}
	}
	return n
}
