// Package earcode packs the left/right ear flags of a clinical finding into
// the integer codes stored across all phase tables: 0=none, 1=left, 2=right,
// 3=both.
package earcode

// Side codes.
const (
	None  = 0
	Left  = 1
	Right = 2
	Both  = 3
)

// Encode maps a pair of ear flags to its packed code.
func Encode(left, right bool) int {
	code := None
	if left {
		code |= Left
	}
	if right {
		code |= Right
	}
	return code
}

// Decode is the inverse of Encode. Codes outside 0..3 decode as None.
func Decode(code int) (left, right bool) {
	if code < None || code > Both {
		return false, false
	}
	return code&Left != 0, code&Right != 0
}

// String returns the human-readable side name for a code.
func String(code int) string {
	switch code {
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Both:
		return "Both"
	default:
		return "None"
	}
}
