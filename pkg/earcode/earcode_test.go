package earcode

import "testing"

func TestEncode(t *testing.T) {
	cases := []struct {
		left, right bool
		want        int
	}{
		{false, false, None},
		{true, false, Left},
		{false, true, Right},
		{true, true, Both},
	}
	for _, tc := range cases {
		if got := Encode(tc.left, tc.right); got != tc.want {
			t.Errorf("Encode(%v, %v) = %d, want %d", tc.left, tc.right, got, tc.want)
		}
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	for code := None; code <= Both; code++ {
		left, right := Decode(code)
		if Encode(left, right) != code {
			t.Errorf("Decode(%d) = (%v, %v), does not round-trip", code, left, right)
		}
	}
}

func TestDecodeOutOfRange(t *testing.T) {
	for _, code := range []int{-1, 4, 99} {
		left, right := Decode(code)
		if left || right {
			t.Errorf("Decode(%d) = (%v, %v), want (false, false)", code, left, right)
		}
	}
}

func TestString(t *testing.T) {
	cases := map[int]string{
		None:  "None",
		Left:  "Left",
		Right: "Right",
		Both:  "Both",
		7:     "None",
	}
	for code, want := range cases {
		if got := String(code); got != want {
			t.Errorf("String(%d) = %q, want %q", code, got, want)
		}
	}
}
