package thinning

// Neighbourhood codes pack the 3x3x3 block around a voxel into 27 bits.
// The voxel at offset (dx, dy, dz) occupies bit (dx+1) + 3*(dy+1) + 9*(dz+1),
// so bits 0-8 hold the slab below, 9-17 the voxel's own slab and 18-26 the
// slab above. Bit 13 is the centre.
const (
	centerBit  = 13
	centerMask = uint32(1) << centerBit
	blockMask  = uint32(1)<<27 - 1
)

// Direction indices. The first six are the principal (face) directions, the
// next twelve the edge directions. Omni is the final sequential pass.
const (
	North = iota // -y
	South        // +y
	East         // +x
	West         // -x
	Top          // +z
	Bottom       // -z
	NorthEast
	NorthWest
	SouthEast
	SouthWest
	TopNorth
	TopSouth
	TopEast
	TopWest
	BottomNorth
	BottomSouth
	BottomEast
	BottomWest
	Omni

	NumDirections      = Omni
	firstEdgeDirection = NorthEast
)

var directionNames = [...]string{
	"N", "S", "E", "W", "T", "B",
	"NE", "NW", "SE", "SW",
	"TN", "TS", "TE", "TW",
	"BN", "BS", "BE", "BW",
	"omni",
}

// DirectionName returns a short label for a direction index.
func DirectionName(dir int) string {
	if dir < 0 || dir >= len(directionNames) {
		return "?"
	}
	return directionNames[dir]
}

// directionVectors are the unit steps the directions point along.
var directionVectors = [NumDirections][3]int{
	{0, -1, 0}, {0, 1, 0}, {1, 0, 0}, {-1, 0, 0}, {0, 0, 1}, {0, 0, -1},
	{1, -1, 0}, {-1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
	{0, -1, 1}, {0, 1, 1}, {1, 0, 1}, {-1, 0, 1},
	{0, -1, -1}, {0, 1, -1}, {1, 0, -1}, {-1, 0, -1},
}

// dirMasks holds the neighbour a direction points at. A voxel is a border
// voxel for that direction when the bit is clear.
var dirMasks = [NumDirections]uint32{
	0x0000400, 0x0010000, 0x0004000, 0x0001000, 0x0400000, 0x0000010,
	0x0000800, 0x0000200, 0x0020000, 0x0008000,
	0x0080000, 0x2000000, 0x0800000, 0x0200000,
	0x0000002, 0x0000080, 0x0000020, 0x0000008,
}

// freeMasks holds the neighbour opposite each direction. A voxel backed by
// that neighbour is part of a surface being eroded, not the tip of a curve.
var freeMasks = [NumDirections]uint32{
	0x0010000, 0x0000400, 0x0001000, 0x0004000, 0x0000010, 0x0400000,
	0x0008000, 0x0020000, 0x0000200, 0x0000800,
	0x0000080, 0x0000002, 0x0000008, 0x0000020,
	0x2000000, 0x0080000, 0x0200000, 0x0800000,
}

// edgeMask selects the six face neighbours. Each absent one is an edge of the
// background complex that the centre voxel would join.
const edgeMask uint32 = 0x0415410

// faceMasks[a] are the four unit squares through the centre lying in the
// plane perpendicular to axis a (0=x, 1=y, 2=z). Each mask holds the square's
// three non-centre corners.
var faceMasks = [3][4]uint32{
	{0x2410000, 0x0010090, 0x0480400, 0x0000412},
	{0x0c04000, 0x0004030, 0x0601000, 0x0001018},
	{0x0034000, 0x0004c00, 0x0019000, 0x0001600},
}

// cubeMasks are the eight unit cubes (octants) sharing the centre voxel,
// each holding the cube's seven non-centre corners.
var cubeMasks = [8]uint32{
	0x6c34000, 0x00341b0, 0x0d84c00, 0x0004c36,
	0x3619000, 0x00190d8, 0x06c1600, 0x000161b,
}

// plane is a 3x3 section of the neighbourhood through the centre, tested with
// the 2-D (8,4) Euler rule by the directional tie-breaks.
type plane struct {
	edges uint32    // the four in-plane 4-neighbours
	ring  uint32    // all eight in-plane neighbours
	faces [4]uint32 // the four in-plane squares through the centre
}

// Coordinate planes, indexed by the normal axis.
var axisPlanes = [3]plane{
	{edges: 0x0410410, ring: 0x2490492, faces: faceMasks[0]},
	{edges: 0x0405010, ring: 0x0e05038, faces: faceMasks[1]},
	{edges: 0x0015400, ring: 0x003de00, faces: faceMasks[2]},
}

// Diagonal planes, spanned by an edge direction and the axis that direction
// does not move along. "Anti" planes use the second diagonal.
var (
	diagXY = plane{
		edges: 0x0420210, ring: 0x4460311,
		faces: [4]uint32{0x4420000, 0x0020110, 0x0440200, 0x0000211},
	}
	diagXYAnti = plane{
		edges: 0x0408810, ring: 0x1508854,
		faces: [4]uint32{0x0500800, 0x0000814, 0x1408000, 0x0008050},
	}
	diagYZ = plane{
		edges: 0x2005002, ring: 0x7005007,
		faces: [4]uint32{0x6004000, 0x3001000, 0x0004006, 0x0001003},
	}
	diagYZAnti = plane{
		edges: 0x0085080, ring: 0x01c51c0,
		faces: [4]uint32{0x0184000, 0x00c1000, 0x0004180, 0x00010c0},
	}
	diagXZ = plane{
		edges: 0x0810408, ring: 0x4910449,
		faces: [4]uint32{0x4810000, 0x0900400, 0x0010048, 0x0000409},
	}
	diagXZAnti = plane{
		edges: 0x0210420, ring: 0x1250524,
		faces: [4]uint32{0x1210000, 0x0240400, 0x0010120, 0x0000424},
	}
)

// dirPlanes lists the two planes each direction's tie-break inspects. A
// principal direction uses the two coordinate planes containing its axis; an
// edge direction uses its own coordinate plane and its diagonal plane.
var dirPlanes = [NumDirections][2]plane{
	North:       {axisPlanes[0], axisPlanes[2]},
	South:       {axisPlanes[0], axisPlanes[2]},
	East:        {axisPlanes[1], axisPlanes[2]},
	West:        {axisPlanes[1], axisPlanes[2]},
	Top:         {axisPlanes[0], axisPlanes[1]},
	Bottom:      {axisPlanes[0], axisPlanes[1]},
	NorthEast:   {axisPlanes[2], diagXYAnti},
	NorthWest:   {axisPlanes[2], diagXY},
	SouthEast:   {axisPlanes[2], diagXY},
	SouthWest:   {axisPlanes[2], diagXYAnti},
	TopNorth:    {axisPlanes[0], diagYZAnti},
	TopSouth:    {axisPlanes[0], diagYZ},
	TopEast:     {axisPlanes[1], diagXZ},
	TopWest:     {axisPlanes[1], diagXZAnti},
	BottomNorth: {axisPlanes[0], diagYZ},
	BottomSouth: {axisPlanes[0], diagYZAnti},
	BottomEast:  {axisPlanes[1], diagXZAnti},
	BottomWest:  {axisPlanes[1], diagXZ},
}

// adjacency[k] has a bit set for every cell of the 3x3x3 block that is
// 26-adjacent to cell k.
var adjacency = buildAdjacency()

func buildAdjacency() [27]uint32 {
	var adj [27]uint32
	for k := 0; k < 27; k++ {
		kx, ky, kz := k%3, k/3%3, k/9
		for j := 0; j < 27; j++ {
			if j == k {
				continue
			}
			jx, jy, jz := j%3, j/3%3, j/9
			if abs(kx-jx) <= 1 && abs(ky-jy) <= 1 && abs(kz-jz) <= 1 {
				adj[k] |= 1 << j
			}
		}
	}
	return adj
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
