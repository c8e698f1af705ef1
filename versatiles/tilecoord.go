package versatiles

// TileCoord2 is a tile position within a single zoom level.
type TileCoord2 struct {
	X, Y uint32
}

// TileCoord3 is a tile position addressed by zoom, x and y. Invariant:
// X < 2^Z and Y < 2^Z.
type TileCoord3 struct {
	Z    uint8
	X, Y uint32
}

// NewTileCoord3 validates z/x/y against the 2^z bound and returns
// CoordOutOfRangeError if violated, matching spec.md's CoordOutOfRange
// error kind.
func NewTileCoord3(z uint8, x, y uint32) (TileCoord3, error) {
	n := uint32(1) << z
	if x >= n || y >= n {
		return TileCoord3{}, &CoordOutOfRangeError{Z: z, X: x, Y: y}
	}
	return TileCoord3{Z: z, X: x, Y: y}, nil
}

// AsCoord2 drops the zoom component.
func (c TileCoord3) AsCoord2() TileCoord2 {
	return TileCoord2{X: c.X, Y: c.Y}
}

// TileBBox is an inclusive rectangular range of tile coordinates at one
// zoom level. It is empty iff XMin > XMax or YMin > YMax.
type TileBBox struct {
	Level      uint8
	XMin, YMin uint32
	XMax, YMax uint32
}

// NewTileBBox builds a bbox, normalizing to the empty representation if the
// min/max are inverted.
func NewTileBBox(level uint8, xMin, yMin, xMax, yMax uint32) TileBBox {
	if xMin > xMax || yMin > yMax {
		return EmptyTileBBox(level)
	}
	return TileBBox{Level: level, XMin: xMin, YMin: yMin, XMax: xMax, YMax: yMax}
}

// EmptyTileBBox returns the canonical empty bbox for a level.
func EmptyTileBBox(level uint8) TileBBox {
	return TileBBox{Level: level, XMin: 1, XMax: 0}
}

// IsEmpty reports whether the bbox contains no tiles.
func (b TileBBox) IsEmpty() bool {
	return b.XMin > b.XMax || b.YMin > b.YMax
}

// Width returns the number of columns covered, 0 if empty.
func (b TileBBox) Width() uint32 {
	if b.IsEmpty() {
		return 0
	}
	return b.XMax - b.XMin + 1
}

// Height returns the number of rows covered, 0 if empty.
func (b TileBBox) Height() uint32 {
	if b.IsEmpty() {
		return 0
	}
	return b.YMax - b.YMin + 1
}

// CountTiles returns the bbox's area in tiles.
func (b TileBBox) CountTiles() uint64 {
	return uint64(b.Width()) * uint64(b.Height())
}

// Intersect returns the minimum covering rectangle shared by b and o. Both
// must be at the same level; callers at the block/tile level always
// arrange this.
func (b TileBBox) Intersect(o TileBBox) TileBBox {
	if b.IsEmpty() || o.IsEmpty() {
		return EmptyTileBBox(b.Level)
	}
	xMin := maxU32(b.XMin, o.XMin)
	yMin := maxU32(b.YMin, o.YMin)
	xMax := minU32(b.XMax, o.XMax)
	yMax := minU32(b.YMax, o.YMax)
	return NewTileBBox(b.Level, xMin, yMin, xMax, yMax)
}

// ContainsCoord2 reports whether p lies within the bbox.
func (b TileBBox) ContainsCoord2(p TileCoord2) bool {
	if b.IsEmpty() {
		return false
	}
	return p.X >= b.XMin && p.X <= b.XMax && p.Y >= b.YMin && p.Y <= b.YMax
}

// ContainsCoord3 reports whether c lies within the bbox at the bbox's level.
func (b TileBBox) ContainsCoord3(c TileCoord3) bool {
	return c.Z == b.Level && b.ContainsCoord2(c.AsCoord2())
}

// IterCoords enumerates every coordinate in the bbox in row-major order
// (ascending y, then ascending x), calling fn for each.
func (b TileBBox) IterCoords(fn func(TileCoord3)) {
	if b.IsEmpty() {
		return
	}
	for y := b.YMin; y <= b.YMax; y++ {
		for x := b.XMin; x <= b.XMax; x++ {
			fn(TileCoord3{Z: b.Level, X: x, Y: y})
			if x == b.XMax {
				break
			}
		}
		if y == b.YMax {
			break
		}
	}
}

// ScaleDown coarsens the bbox by factor f, e.g. f=256 maps tile coordinates
// down to their containing block coordinates.
func (b TileBBox) ScaleDown(f uint32) TileBBox {
	if b.IsEmpty() {
		return EmptyTileBBox(b.Level)
	}
	return NewTileBBox(b.Level, b.XMin/f, b.YMin/f, b.XMax/f, b.YMax/f)
}

// GetTileIndex returns the row-major index of p within the bbox. Callers
// must ensure p is contained in b.
func (b TileBBox) GetTileIndex(p TileCoord2) uint64 {
	return uint64(p.Y-b.YMin)*uint64(b.Width()) + uint64(p.X-b.XMin)
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// TileBBoxPyramid maps zoom level (0..=31) to the TileBBox of tiles covered
// at that level. Used to describe overall coverage of a container.
type TileBBoxPyramid struct {
	levels [32]*TileBBox
}

// NewTileBBoxPyramid returns an empty pyramid.
func NewTileBBoxPyramid() TileBBoxPyramid {
	return TileBBoxPyramid{}
}

// Get returns the bbox at level z, or the canonical empty bbox if unset.
func (p *TileBBoxPyramid) Get(z uint8) TileBBox {
	if int(z) >= len(p.levels) || p.levels[z] == nil {
		return EmptyTileBBox(z)
	}
	return *p.levels[z]
}

// Set replaces the bbox at level z.
func (p *TileBBoxPyramid) Set(z uint8, b TileBBox) {
	cp := b
	p.levels[z] = &cp
}

// Include extends the bbox at level z to also cover b (union of the
// covering rectangles).
func (p *TileBBoxPyramid) Include(z uint8, b TileBBox) {
	if b.IsEmpty() {
		return
	}
	cur := p.Get(z)
	if cur.IsEmpty() {
		p.Set(z, b)
		return
	}
	p.Set(z, NewTileBBox(z, minU32(cur.XMin, b.XMin), minU32(cur.YMin, b.YMin), maxU32(cur.XMax, b.XMax), maxU32(cur.YMax, b.YMax)))
}

// ZoomMin returns the lowest zoom level with a non-empty bbox, and whether
// any level has coverage at all.
func (p *TileBBoxPyramid) ZoomMin() (uint8, bool) {
	for z := 0; z < len(p.levels); z++ {
		if p.levels[z] != nil && !p.levels[z].IsEmpty() {
			return uint8(z), true
		}
	}
	return 0, false
}

// ZoomMax returns the highest zoom level with a non-empty bbox, and whether
// any level has coverage at all.
func (p *TileBBoxPyramid) ZoomMax() (uint8, bool) {
	for z := len(p.levels) - 1; z >= 0; z-- {
		if p.levels[z] != nil && !p.levels[z].IsEmpty() {
			return uint8(z), true
		}
	}
	return 0, false
}
