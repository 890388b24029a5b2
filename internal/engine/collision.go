package engine

import (
	"sort"

	"blocktree/internal/domain"
)

// Candidate is a measurable droppable rect offered to the detector.
// Slice position is registration order; later entries were registered
// more recently.
type Candidate struct {
	ID   string
	Rect domain.Rect
}

// Match is one ranked collision result, best first.
type Match struct {
	ID string
}

// CollisionFunc maps the pointer rect and the candidate set to ranked
// matches. The session depends only on this signature, so alternative
// strategies drop in without touching the state machine.
type CollisionFunc func(pointer domain.Rect, candidates []Candidate) []Match

// PointWithin is the default strategy: every candidate containing the
// pointer's anchor point matches, ranked by smallest area first, then
// by most recent registration. Both rules together give a total,
// deterministic order even for overlapping zones of identical size.
func PointWithin(pointer domain.Rect, candidates []Candidate) []Match {
	p := domain.Point{X: pointer.X, Y: pointer.Y}

	type hit struct {
		id   string
		area float64
		seq  int
	}
	var hits []hit
	for i, c := range candidates {
		if c.Rect.Contains(p) {
			hits = append(hits, hit{id: c.ID, area: c.Rect.Area(), seq: i})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].area != hits[j].area {
			return hits[i].area < hits[j].area
		}
		return hits[i].seq > hits[j].seq
	})

	matches := make([]Match, len(hits))
	for i, h := range hits {
		matches[i] = Match{ID: h.id}
	}
	return matches
}

// RectIntersection is an alternative strategy for sized drag previews:
// candidates overlapping the pointer rect match, ranked by the larger
// overlap area, ties broken by most recent registration.
func RectIntersection(pointer domain.Rect, candidates []Candidate) []Match {
	if pointer.Area() == 0 {
		return PointWithin(pointer, candidates)
	}

	type hit struct {
		id      string
		overlap float64
		seq     int
	}
	var hits []hit
	for i, c := range candidates {
		if !pointer.Intersects(c.Rect) {
			continue
		}
		w := min(pointer.X+pointer.Width, c.Rect.X+c.Rect.Width) - max(pointer.X, c.Rect.X)
		h := min(pointer.Y+pointer.Height, c.Rect.Y+c.Rect.Height) - max(pointer.Y, c.Rect.Y)
		hits = append(hits, hit{id: c.ID, overlap: w * h, seq: i})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].overlap != hits[j].overlap {
			return hits[i].overlap > hits[j].overlap
		}
		return hits[i].seq > hits[j].seq
	})

	matches := make([]Match, len(hits))
	for i, h := range hits {
		matches[i] = Match{ID: h.id}
	}
	return matches
}
