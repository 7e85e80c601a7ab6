package domain

import "testing"

func TestRoutePointsText(t *testing.T) {
	r := &Route{
		ID: 1,
		Points: []RoutePoint{
			{Seq: 1, OrderID: 10, Location: &Coordinates{Lat: -17.39, Lon: -66.15}},
			{Seq: 2, OrderID: 11},
			{Seq: 3, OrderID: 12, Location: &Coordinates{Lat: 1, Lon: 2.5}},
		},
	}

	want := "(-17.39, -66.15); (None, None); (1, 2.5); "
	if got := r.PointsText(); got != want {
		t.Fatalf("PointsText() = %q, want %q", got, want)
	}

	last, ok := r.Last()
	if !ok || last.OrderID != 12 {
		t.Fatalf("Last() = %+v, %v; want order 12", last, ok)
	}

	empty := &Route{}
	if empty.PointsText() != "" {
		t.Fatalf("empty route rendered %q", empty.PointsText())
	}
	if _, ok := empty.Last(); ok {
		t.Fatalf("empty route reported a last point")
	}
}

func TestCoordinatesDistanceTo(t *testing.T) {
	a := Coordinates{Lat: 0, Lon: 0}
	b := Coordinates{Lat: 3, Lon: 4}

	if d := a.DistanceTo(b); d != 5 {
		t.Fatalf("distance = %v, want 5", d)
	}
	if d := b.DistanceTo(a); d != 5 {
		t.Fatalf("distance is not symmetric: %v", d)
	}
	if (Coordinates{Lat: 91}).Valid() {
		t.Fatalf("lat 91 should be invalid")
	}
}
