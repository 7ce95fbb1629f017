package tracker

import (
	"testing"
)

func TestHistory(t *testing.T) {

	h := NewHistory(3)

	if _, ok := h.Mean(); ok {
		t.Errorf("expected empty history to have no mean")
	}

	for i := 1; i <= 4; i++ {
		h.Add(Metrics{
			LeftRadius:   float64(i * 100),
			RightRadius:  float64(i * 200),
			CenterOffset: float64(i),
		})
	}

	if h.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", h.Len())
	}

	mean, ok := h.Mean()

	if !ok {
		t.Fatalf("expected mean")
	}

	// oldest entry was dropped so mean is over 2, 3, 4
	want := Metrics{LeftRadius: 300, RightRadius: 600, CenterOffset: 3}

	if mean != want {
		t.Errorf("expected mean %+v, got %+v", want, mean)
	}

	last, _ := h.Last()

	if last.CenterOffset != 4 {
		t.Errorf("expected last offset 4, got %v", last.CenterOffset)
	}

	h.Reset()

	if h.Len() != 0 {
		t.Errorf("expected empty history after reset")
	}
}
