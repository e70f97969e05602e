package render

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestTopologyFor(t *testing.T) {
	tests := []struct {
		mode Mode
		want gputypes.PrimitiveTopology
		ok   bool
	}{
		{ModePoints, gputypes.PrimitiveTopologyPointList, true},
		{ModeLines, gputypes.PrimitiveTopologyLineList, true},
		{ModeLineStrip, gputypes.PrimitiveTopologyLineStrip, true},
		{ModeTriangles, gputypes.PrimitiveTopologyTriangleList, true},
		{ModeTriangleStrip, gputypes.PrimitiveTopologyTriangleStrip, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			got, ok := TopologyFor(tt.mode)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}

	for _, mode := range []Mode{ModeLineLoop, ModeTriangleFan} {
		if _, ok := TopologyFor(mode); ok {
			t.Fatalf("expected %s to have no topology", mode)
		}
	}
}

func TestTriangles(t *testing.T) {
	list := Triangles(gputypes.PrimitiveTopologyTriangleList, 7)
	if len(list) != 2 || list[1] != [3]int{3, 4, 5} {
		t.Fatalf("unexpected list assembly: %v", list)
	}

	strip := Triangles(gputypes.PrimitiveTopologyTriangleStrip, 4)
	if len(strip) != 2 || strip[0] != [3]int{0, 1, 2} || strip[1] != [3]int{2, 1, 3} {
		t.Fatalf("unexpected strip assembly: %v", strip)
	}

	if got := Triangles(gputypes.PrimitiveTopologyLineList, 4); len(got) != 0 {
		t.Fatalf("expected no triangles for lines, got %v", got)
	}
}

func TestSurfacePipeline(t *testing.T) {
	p := SurfacePipeline()
	if p.Blend == nil {
		t.Fatal("expected blending enabled")
	}
	if p.DepthWrite {
		t.Fatal("expected depth writes disabled")
	}
	if p.Primitive.Topology != gputypes.PrimitiveTopologyTriangleStrip {
		t.Fatalf("expected strip topology, got %v", p.Primitive.Topology)
	}
}
