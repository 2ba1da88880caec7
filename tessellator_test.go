package meshdist

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestVoronoiTessellatorTwoPoints(t *testing.T) {
	augmented := append([]r3.Vector{
		{X: -1, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
	}, cubeCorners(4)...)

	tess := newVoronoiTessellator()
	cells, neighbors, err := tess.Tessellate(augmented, 2, 4, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(cells), test.ShouldEqual, 2)

	// Two sites are each other's sole mesh-vertex Delaunay neighbor.
	test.That(t, neighbors[0], test.ShouldResemble, []int{1})
	test.That(t, neighbors[1], test.ShouldResemble, []int{0})

	// Site 0's cell lies entirely on the x<0 side of the bisector plane.
	cell0 := cells[0].cell
	for i := 0; i < cell0.numVertices(); i++ {
		test.That(t, cell0.vertex(i).X <= 1e-6, test.ShouldBeTrue)
	}
}

func TestCubeCorners(t *testing.T) {
	corners := cubeCorners(2)
	test.That(t, len(corners), test.ShouldEqual, 8)
	for _, c := range corners {
		test.That(t, math.Abs(c.X), test.ShouldAlmostEqual, 4.0, 1e-9)
		test.That(t, math.Abs(c.Y), test.ShouldAlmostEqual, 4.0, 1e-9)
		test.That(t, math.Abs(c.Z), test.ShouldAlmostEqual, 4.0, 1e-9)
	}
}
