package detection

import "testing"

func TestDetection_CenterAndArea(t *testing.T) {
	d := Detection{X: 0.2, Y: 0.4, W: 0.2, H: 0.2}

	cx, cy := d.Center()
	if cx != 0.3 || cy != 0.5 {
		t.Errorf("Center: got (%v, %v), want (0.3, 0.5)", cx, cy)
	}
	if a := d.Area(); a < 0.0399 || a > 0.0401 {
		t.Errorf("Area: got %v, want 0.04", a)
	}
}

func TestSelectBest_Empty(t *testing.T) {
	if got := SelectBest(nil, -1); got != nil {
		t.Errorf("SelectBest(nil): got %+v, want nil", got)
	}
}

func TestSelectBest_ClassFilter(t *testing.T) {
	dets := []Detection{
		{ClassID: ClassDog, Confidence: 0.9, W: 0.5, H: 0.5},
		{ClassID: ClassPerson, Confidence: 0.6, W: 0.2, H: 0.2},
	}

	got := SelectBest(dets, ClassPerson)
	if got == nil || got.ClassID != ClassPerson {
		t.Fatalf("class filter ignored: got %+v", got)
	}

	if got := SelectBest(dets, ClassCup); got != nil {
		t.Errorf("SelectBest for absent class: got %+v, want nil", got)
	}
}

func TestSelectBest_PrefersConfidentLargeBoxes(t *testing.T) {
	dets := []Detection{
		{ClassID: ClassPerson, Confidence: 0.95, W: 0.05, H: 0.05}, // sharp but tiny
		{ClassID: ClassPerson, Confidence: 0.80, W: 0.6, H: 0.6},   // big and solid
	}

	got := SelectBest(dets, ClassPerson)
	if got == nil || got.W != 0.6 {
		t.Errorf("got %+v, want the large box", got)
	}
}

func TestCocoLabel(t *testing.T) {
	if l := cocoLabel(ClassPerson); l != "person" {
		t.Errorf("label 1: got %q", l)
	}
	if l := cocoLabel(999); l != "unknown" {
		t.Errorf("label 999: got %q", l)
	}
}
