package codebook

// ColorCycle hands out palette colours in order, wrapping at the end.
// A cycle belongs to a single load and is not safe for concurrent use.
type ColorCycle struct {
	palette []string
	next    int
}

// NewColorCycle creates a cycle over a copy of palette.
// An empty palette yields empty colours.
func NewColorCycle(palette []string) *ColorCycle {
	return &ColorCycle{palette: append([]string(nil), palette...)}
}

// At returns the colour for position i: palette[i mod len(palette)].
func (c *ColorCycle) At(i int) string {
	if len(c.palette) == 0 || i < 0 {
		return ""
	}
	return c.palette[i%len(c.palette)]
}

// Next returns the colour for the current position and advances.
func (c *ColorCycle) Next() string {
	colour := c.At(c.next)
	c.next++
	return colour
}

// Len reports the palette size.
func (c *ColorCycle) Len() int {
	return len(c.palette)
}
