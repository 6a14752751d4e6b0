package layout

// Empty marks a grid cell with no tile.
const Empty = -1

// Grid is a rendered layout, indexed [y][x].
type Grid [][]int

type cell struct {
	tile    Tile
	ordinal int
}

type renderConfig struct {
	fullSlope bool
	cell      func(int, Tile) int
}

// RenderOption configures Render
type RenderOption func(*renderConfig)

// WithFullSlope repeats a diagonal object until it covers the whole area
// rather than stopping at the first edge.
func WithFullSlope() RenderOption {
	return func(c *renderConfig) {
		c.fullSlope = true
	}
}

// WithCellFunc sets the value written for each tile step. f is passed the
// position of the step among all tile steps and the step itself. The default
// writes the global tile index.
func WithCellFunc(f func(int, Tile) int) RenderOption {
	return func(c *renderConfig) {
		c.cell = f
	}
}

func newGrid(width, height int) Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	g := make(Grid, height)
	for y := range g {
		g[y] = make([]int, width)
		for x := range g[y] {
			g[y][x] = Empty
		}
	}
	return g
}

// Render lays steps out over a width by height grid. Layouts starting with a
// slope are drawn diagonally, everything else is drawn as a rectangle with
// repeating rows and columns.
func Render(steps []Step, width, height int, opts ...RenderOption) Grid {
	c := &renderConfig{
		cell: func(_ int, t Tile) int { return t.Index() },
	}
	for _, opt := range opts {
		opt(c)
	}

	if len(steps) > 0 {
		if slope, ok := steps[0].(Slope); ok {
			return renderDiagonal(steps, slope, width, height, c)
		}
	}
	return renderRectangle(steps, width, height, c)
}

func (c *renderConfig) value(cl *cell) int {
	if cl == nil {
		return Empty
	}
	return c.cell(cl.ordinal, cl.tile)
}

// rows splits steps into rows of tile cells at each linefeed. Steps after
// the last linefeed only form a row when tail is set.
func rows(steps []Step, ordinal *int, tail bool) [][]cell {
	var out [][]cell
	row := []cell{}
	for _, step := range steps {
		switch s := step.(type) {
		case Linefeed:
			out = append(out, row)
			row = []cell{}
		case Tile:
			row = append(row, cell{s, *ordinal})
			*ordinal++
		}
	}
	if tail {
		out = append(out, row)
	}
	return out
}

// partition splits items into the runs before, during and after the
// repeating ones.
func partition(n int, repeats func(int) bool) (before, repeat, after []int) {
	found := false
	for i := 0; i < n; i++ {
		switch {
		case repeats(i):
			found = true
			repeat = append(repeat, i)
		case !found:
			before = append(before, i)
		default:
			after = append(after, i)
		}
	}
	return
}

// pick maps position i of n onto the partitioned items.
func pick(i, n int, before, repeat, after []int) (int, bool) {
	if len(repeat) == 0 {
		if len(before) == 0 {
			return 0, false
		}
		return before[i%len(before)], true
	}
	switch {
	case i < len(before):
		return before[i], true
	case i >= n-len(after):
		return after[i-n+len(after)], true
	default:
		return repeat[(i-len(before))%len(repeat)], true
	}
}

func renderRectangle(steps []Step, width, height int, c *renderConfig) Grid {
	g := newGrid(width, height)

	ordinal := 0
	rs := rows(steps, &ordinal, false)

	yBefore, yRepeat, yAfter := partition(len(rs), func(i int) bool {
		for _, cl := range rs[i] {
			if cl.tile.RepeatY {
				return true
			}
		}
		return false
	})

	for y := range g {
		r, ok := pick(y, len(g), yBefore, yRepeat, yAfter)
		if !ok {
			continue
		}
		row := rs[r]
		xBefore, xRepeat, xAfter := partition(len(row), func(i int) bool { return row[i].tile.RepeatX })
		for x := range g[y] {
			i, ok := pick(x, len(g[y]), xBefore, xRepeat, xAfter)
			if !ok {
				continue
			}
			g[y][x] = c.value(&row[i])
		}
	}

	return g
}

// section is a rectangular block of a diagonal object
type section [][]*cell

func (s section) height() int { return len(s) }

func (s section) width() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

func newSection(steps []Step, ordinal *int) section {
	rs := rows(steps, ordinal, true)
	if n := len(rs); len(rs[n-1]) == 0 {
		rs = rs[:n-1]
	}

	w := 0
	for _, r := range rs {
		if len(r) > w {
			w = len(r)
		}
	}

	s := make(section, len(rs))
	for y, r := range rs {
		s[y] = make([]*cell, w)
		for x := range r {
			s[y][x] = &r[x]
		}
	}
	return s
}

func (c *renderConfig) stamp(g Grid, s section, ox, oy int) {
	for y, r := range s {
		gy := oy + y
		if gy < 0 || gy >= len(g) {
			continue
		}
		for x, cl := range r {
			gx := ox + x
			if gx < 0 || gx >= len(g[gy]) {
				continue
			}
			g[gy][gx] = c.value(cl)
		}
	}
}

func renderDiagonal(steps []Step, slope Slope, width, height int, c *renderConfig) Grid {
	g := newGrid(width, height)

	var bounds []int
	for i, step := range steps {
		if _, ok := step.(Slope); ok {
			bounds = append(bounds, i)
		}
	}
	bounds = append(bounds, len(steps))

	ordinal := 0
	var sections []section
	for i := 0; i+1 < len(bounds) && i < 2; i++ {
		sections = append(sections, newSection(steps[bounds[i]+1:bounds[i+1]], &ordinal))
	}

	main := sections[0]
	mw, mh := main.width(), main.height()
	if mw == 0 || mh == 0 {
		return g
	}

	var sub section
	if len(sections) > 1 {
		sub = sections[1]
	}
	sw, sh := sub.width(), sub.height()

	draw := height / mh
	if n := width / mw; (c.fullSlope && n > draw) || (!c.fullSlope && n < draw) {
		draw = n
	}

	var x, y, xi, yi int
	switch {
	case slope.Outward && slope.Floor:
		x, y, xi, yi = 0, height-mh-sh, mw, -mh
	case !slope.Outward && slope.Floor:
		x, y, xi, yi = 0, 0, mw, mh
	case slope.Outward && !slope.Floor:
		x, y, xi, yi = 0, sh, mw, mh
	default:
		x, y, xi, yi = 0, height-mh, mw, -mh
	}

	for i := 0; i < draw; i++ {
		c.stamp(g, main, x, y)
		if sub != nil {
			xb := x
			if !slope.Outward {
				xb = x + mw - sw
			}
			if slope.Floor {
				c.stamp(g, sub, xb, y+mh)
			} else {
				c.stamp(g, sub, xb, y-sh)
			}
		}
		x += xi
		y += yi
	}

	return g
}
