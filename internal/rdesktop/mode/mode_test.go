package mode

import "testing"

func TestFromRoundTrip(t *testing.T) {
	for _, m := range []Mode{None, ViewOnly, InputOnly, Full} {
		if got := From(m.Uint32()); got != m {
			t.Fatalf("From(%d) = %v, want %v", m.Uint32(), got, m)
		}
	}
}

func TestFromUnknownMapsToNone(t *testing.T) {
	if got := From(99); got != None {
		t.Fatalf("From(99) = %v, want None", got)
	}
}

func TestFromCapabilities(t *testing.T) {
	cases := []struct {
		capture, input bool
		want           Mode
	}{
		{false, false, None},
		{true, false, ViewOnly},
		{false, true, InputOnly},
		{true, true, Full},
	}
	for _, tc := range cases {
		if got := FromCapabilities(tc.capture, tc.input); got != tc.want {
			t.Fatalf("FromCapabilities(%v, %v) = %v, want %v", tc.capture, tc.input, got, tc.want)
		}
	}
}

func TestPredicates(t *testing.T) {
	if None.IsActive() {
		t.Fatal("None should not be active")
	}
	if !Full.HasCapture() || !Full.HasInput() {
		t.Fatal("Full should have both capture and input")
	}
	if !ViewOnly.HasCapture() || ViewOnly.HasInput() {
		t.Fatal("ViewOnly should have capture only")
	}
	if InputOnly.HasCapture() || !InputOnly.HasInput() {
		t.Fatal("InputOnly should have input only")
	}
}
