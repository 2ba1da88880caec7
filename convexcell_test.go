package meshdist

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestConvexCellBoxGeometry(t *testing.T) {
	cell := newBoxCell(1.0)
	cell.computeGeometry()

	test.That(t, cell.empty(), test.ShouldBeFalse)
	test.That(t, cell.numVertices(), test.ShouldEqual, 8)

	for i := 0; i < cell.numVertices(); i++ {
		test.That(t, len(cell.ringAround(i)) >= 3, test.ShouldBeTrue)
	}
}

func TestConvexCellClipShrinksVolume(t *testing.T) {
	cell := newBoxCell(1.0)
	cell.computeGeometry()
	before := cell.Volume()
	test.That(t, before > 0, test.ShouldBeTrue)

	clipped := cell.clone()
	plane, ok := newPlaneFromPoint(r3.Vector{}, r3.Vector{X: 1})
	test.That(t, ok, test.ShouldBeTrue)
	clipped.clipByPlane(plane)
	clipped.computeGeometry()

	after := clipped.Volume()
	test.That(t, after < before, test.ShouldBeTrue)
	test.That(t, after, test.ShouldAlmostEqual, before/2, 1e-6)
}

func TestConvexCellEmptyAfterOpposingClips(t *testing.T) {
	cell := newBoxCell(1.0)
	p1, _ := newPlaneFromPoint(r3.Vector{X: 10}, r3.Vector{X: 1})
	p2, _ := newPlaneFromPoint(r3.Vector{X: 10}, r3.Vector{X: -1})
	cell.clipByPlane(p1)
	cell.clipByPlane(p2)
	cell.computeGeometry()
	test.That(t, cell.empty(), test.ShouldBeTrue)
}

func TestIntersectThreePlanes(t *testing.T) {
	px, _ := newPlaneFromPoint(r3.Vector{}, r3.Vector{X: 1})
	py, _ := newPlaneFromPoint(r3.Vector{}, r3.Vector{Y: 1})
	pz, _ := newPlaneFromPoint(r3.Vector{}, r3.Vector{Z: 1})

	p, ok := intersectThreePlanes(px, py, pz)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, p, test.ShouldResemble, r3.Vector{})
}
