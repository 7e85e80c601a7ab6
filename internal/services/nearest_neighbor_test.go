package services

import (
	"delivery-dispatch-service/internal/domain"
	"math/rand"
	"testing"
)

func order(id int64, lat, lon float64) *domain.Order {
	return &domain.Order{ID: id, Status: domain.OrderPending, Location: &domain.Coordinates{Lat: lat, Lon: lon}}
}

func unlocated(id int64) *domain.Order {
	return &domain.Order{ID: id, Status: domain.OrderPending}
}

func ids(orders []*domain.Order) []int64 {
	out := make([]int64, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSequenceOrdersGreedyPath(t *testing.T) {
	orders := []*domain.Order{
		order(1, 1, 0),
		order(2, 5, 0),
		order(3, 2, 0),
	}

	got := ids(SequenceOrders(domain.Coordinates{}, orders))
	want := []int64{1, 3, 2}
	if !equalIDs(got, want) {
		t.Fatalf("sequence = %v, want %v", got, want)
	}

	// Input slice is left untouched.
	if !equalIDs(ids(orders), []int64{1, 2, 3}) {
		t.Fatalf("input was reordered: %v", ids(orders))
	}
}

func TestSequenceOrdersGreedyIsNotShortest(t *testing.T) {
	// Greedy takes the closest hop even when it forces a long way back.
	orders := []*domain.Order{
		order(1, 0, 3),
		order(2, 0, -1),
		order(3, 0, -4),
	}

	got := ids(SequenceOrders(domain.Coordinates{}, orders))
	want := []int64{2, 3, 1}
	if !equalIDs(got, want) {
		t.Fatalf("sequence = %v, want %v", got, want)
	}
}

func TestSequenceOrdersTieKeepsFirstEncountered(t *testing.T) {
	orders := []*domain.Order{
		order(7, 0, 1),
		order(4, 0, -1),
		order(9, 1, 0),
	}

	got := ids(SequenceOrders(domain.Coordinates{}, orders))
	if got[0] != 7 {
		t.Fatalf("first stop = %d, want 7 (first of three equidistant orders)", got[0])
	}
}

func TestSequenceOrdersUnlocatedGoLast(t *testing.T) {
	orders := []*domain.Order{
		unlocated(20),
		order(1, 3, 0),
		unlocated(10),
		order(2, 1, 0),
		unlocated(30),
	}

	got := ids(SequenceOrders(domain.Coordinates{}, orders))
	want := []int64{2, 1, 20, 10, 30}
	if !equalIDs(got, want) {
		t.Fatalf("sequence = %v, want %v", got, want)
	}
}

func TestSequenceOrdersEdgeCases(t *testing.T) {
	if got := SequenceOrders(domain.Coordinates{}, nil); len(got) != 0 {
		t.Fatalf("expected empty sequence, got %v", ids(got))
	}

	onlyUnlocated := []*domain.Order{unlocated(3), unlocated(1)}
	if got := ids(SequenceOrders(domain.Coordinates{}, onlyUnlocated)); !equalIDs(got, []int64{3, 1}) {
		t.Fatalf("sequence = %v, want [3 1]", got)
	}
}

func TestSequenceOrdersIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(25)
		orders := make([]*domain.Order, 0, n)
		for i := 0; i < n; i++ {
			id := int64(i + 1)
			if rng.Intn(5) == 0 {
				orders = append(orders, unlocated(id))
				continue
			}
			orders = append(orders, order(id, -17.4+rng.Float64()*0.1, -66.2+rng.Float64()*0.1))
		}

		got := SequenceOrders(domain.Coordinates{Lat: -17.393879, Lon: -66.156944}, orders)
		if len(got) != n {
			t.Fatalf("round %d: got %d orders, want %d", round, len(got), n)
		}

		seen := make(map[int64]bool, n)
		sawUnlocated := false
		for _, o := range got {
			if seen[o.ID] {
				t.Fatalf("round %d: order %d appears twice", round, o.ID)
			}
			seen[o.ID] = true

			if o.Location == nil {
				sawUnlocated = true
			} else if sawUnlocated {
				t.Fatalf("round %d: located order %d placed after an unlocated one", round, o.ID)
			}
		}
	}
}
