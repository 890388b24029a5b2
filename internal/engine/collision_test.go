package engine_test

import (
	"testing"

	"blocktree/internal/domain"
	"blocktree/internal/engine"
)

func rect(x, y, w, h float64) domain.Rect {
	return domain.Rect{X: x, Y: y, Width: w, Height: h}
}

func pointer(x, y float64) domain.Rect {
	return domain.RectAt(domain.Point{X: x, Y: y})
}

func TestPointWithin_EmptyCandidates(t *testing.T) {
	matches := engine.PointWithin(pointer(10, 10), nil)
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}

func TestPointWithin_NoHit(t *testing.T) {
	candidates := []engine.Candidate{
		{ID: "a", Rect: rect(0, 0, 50, 50)},
	}
	matches := engine.PointWithin(pointer(100, 100), candidates)
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %v", matches)
	}
}

func TestPointWithin_SmallestAreaWins(t *testing.T) {
	candidates := []engine.Candidate{
		{ID: "outer", Rect: rect(0, 0, 200, 200)},
		{ID: "inner", Rect: rect(40, 40, 40, 40)},
	}
	matches := engine.PointWithin(pointer(50, 50), candidates)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "inner" {
		t.Fatalf("expected inner ranked first, got %s", matches[0].ID)
	}
}

func TestPointWithin_EqualAreaMostRecentWins(t *testing.T) {
	// Overlapping synthetic zones of identical size: the later
	// registration wins, deterministically.
	candidates := []engine.Candidate{
		{ID: "first", Rect: rect(0, 0, 60, 60)},
		{ID: "second", Rect: rect(0, 0, 60, 60)},
	}
	matches := engine.PointWithin(pointer(30, 30), candidates)
	if matches[0].ID != "second" {
		t.Fatalf("expected most recently registered zone first, got %s", matches[0].ID)
	}
	// And the rule is stable across calls.
	for i := 0; i < 10; i++ {
		again := engine.PointWithin(pointer(30, 30), candidates)
		if again[0].ID != "second" {
			t.Fatalf("tie-break not deterministic on call %d", i)
		}
	}
}

func TestPointWithin_EdgeInclusive(t *testing.T) {
	candidates := []engine.Candidate{
		{ID: "a", Rect: rect(0, 0, 50, 50)},
	}
	if m := engine.PointWithin(pointer(0, 0), candidates); len(m) != 1 {
		t.Error("expected top-left corner to hit")
	}
	if m := engine.PointWithin(pointer(50, 50), candidates); len(m) != 1 {
		t.Error("expected bottom-right corner to hit")
	}
}

func TestRectIntersection_LargestOverlapWins(t *testing.T) {
	candidates := []engine.Candidate{
		{ID: "left", Rect: rect(0, 0, 100, 100)},
		{ID: "right", Rect: rect(80, 0, 100, 100)},
	}
	// Preview rect mostly over "left".
	preview := rect(10, 10, 80, 80)
	matches := engine.RectIntersection(preview, candidates)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "left" {
		t.Fatalf("expected left ranked first, got %s", matches[0].ID)
	}
}

func TestRectIntersection_PointFallback(t *testing.T) {
	candidates := []engine.Candidate{
		{ID: "a", Rect: rect(0, 0, 50, 50)},
	}
	matches := engine.RectIntersection(pointer(25, 25), candidates)
	if len(matches) != 1 || matches[0].ID != "a" {
		t.Fatalf("expected point fallback hit, got %v", matches)
	}
}
