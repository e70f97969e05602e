package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Mode is a primitive mode as numbered by glTF mesh primitives.
type Mode int

const (
	ModePoints Mode = iota
	ModeLines
	ModeLineLoop
	ModeLineStrip
	ModeTriangles
	ModeTriangleStrip
	ModeTriangleFan
)

func (m Mode) String() string {
	switch m {
	case ModePoints:
		return "points"
	case ModeLines:
		return "lines"
	case ModeLineLoop:
		return "line_loop"
	case ModeLineStrip:
		return "line_strip"
	case ModeTriangles:
		return "triangles"
	case ModeTriangleStrip:
		return "triangle_strip"
	case ModeTriangleFan:
		return "triangle_fan"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// TopologyFor maps a primitive mode to the GPU topology that draws it.
// Loops and fans have no direct topology and report false.
func TopologyFor(m Mode) (gputypes.PrimitiveTopology, bool) {
	switch m {
	case ModePoints:
		return gputypes.PrimitiveTopologyPointList, true
	case ModeLines:
		return gputypes.PrimitiveTopologyLineList, true
	case ModeLineStrip:
		return gputypes.PrimitiveTopologyLineStrip, true
	case ModeTriangles:
		return gputypes.PrimitiveTopologyTriangleList, true
	case ModeTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip, true
	default:
		var none gputypes.PrimitiveTopology
		return none, false
	}
}

// Triangles returns the vertex index triples a triangle topology assembles
// from n vertices. Non-triangle topologies yield nothing.
func Triangles(topology gputypes.PrimitiveTopology, n int) [][3]int {
	var tris [][3]int
	switch topology {
	case gputypes.PrimitiveTopologyTriangleList:
		for i := 0; i+2 < n; i += 3 {
			tris = append(tris, [3]int{i, i + 1, i + 2})
		}
	case gputypes.PrimitiveTopologyTriangleStrip:
		for i := 0; i+2 < n; i++ {
			// Keep a consistent winding across the strip.
			if i%2 == 0 {
				tris = append(tris, [3]int{i, i + 1, i + 2})
			} else {
				tris = append(tris, [3]int{i + 1, i, i + 2})
			}
		}
	}
	return tris
}
