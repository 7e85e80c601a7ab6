package services

import (
	"delivery-dispatch-service/internal/domain"
	"math"
)

// SequenceOrders orders a batch with a greedy nearest-neighbor walk from start.
//
// Distance is Euclidean in raw degrees. On equal distance the order seen
// first in the input wins, so the result is deterministic for a given input
// order. Orders without a coordinate are never chosen by distance; once no
// located order remains they are appended in input order.
// It does not attempt global route optimization.
func SequenceOrders(start domain.Coordinates, orders []*domain.Order) []*domain.Order {
	remaining := make([]*domain.Order, len(orders))
	copy(remaining, orders)

	out := make([]*domain.Order, 0, len(orders))
	current := start

	for len(remaining) > 0 {
		best := -1
		bestDist := math.Inf(1)

		for i, o := range remaining {
			if o.Location == nil {
				continue
			}
			// Strict comparison keeps the first encountered on ties.
			if d := current.DistanceTo(*o.Location); d < bestDist {
				best = i
				bestDist = d
			}
		}

		if best < 0 {
			out = append(out, remaining...)
			break
		}

		next := remaining[best]
		out = append(out, next)
		current = *next.Location
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	return out
}
