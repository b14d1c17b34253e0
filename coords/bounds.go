package coords

// Bounds describes the extent of a rectangular grid. Terrain owns one to
// validate tile coordinates and enumerate neighbors; no other subsystem
// needs viewport, pixel, or screen-space conversions, so this is the whole
// of what the teacher's coordinate manager contributes to the core.
type Bounds struct {
	Width, Height int
}

// NewBounds creates a grid extent of width x height tiles.
func NewBounds(width, height int) Bounds {
	return Bounds{Width: width, Height: height}
}

// Contains reports whether t falls within the grid extent.
func (b Bounds) Contains(t Tile) bool {
	return t.X >= 0 && t.X < b.Width && t.Y >= 0 && t.Y < b.Height
}

// Index converts a tile to a flat array index, row-major.
func (b Bounds) Index(t Tile) int {
	return t.Y*b.Width + t.X
}

// FromIndex converts a flat array index back to a tile.
func (b Bounds) FromIndex(index int) Tile {
	return Tile{X: index % b.Width, Y: index / b.Width}
}

// CardinalNeighbors returns the up-to-4 orthogonally adjacent tiles that
// fall within bounds, in N, E, S, W order.
func (b Bounds) CardinalNeighbors(t Tile) []Tile {
	candidates := [4]Tile{
		{X: t.X, Y: t.Y - 1},
		{X: t.X + 1, Y: t.Y},
		{X: t.X, Y: t.Y + 1},
		{X: t.X - 1, Y: t.Y},
	}
	neighbors := make([]Tile, 0, 4)
	for _, c := range candidates {
		if b.Contains(c) {
			neighbors = append(neighbors, c)
		}
	}
	return neighbors
}
