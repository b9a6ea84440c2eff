package input

import "strings"

// Gesture letters recognized by the peripheral, also used as keyboard keys.
// Z is the first (strongest) attack slot, L the last.
var keyMap = map[string]int{
	"Z": 0,
	"O": 1,
	"N": 2,
	"L": 3,
}

// KeyIndex maps a key press to an attack slot.
func KeyIndex(key string) (int, bool) {
	idx, ok := keyMap[strings.ToUpper(strings.TrimSpace(key))]
	return idx, ok
}

// DecodeGesture decodes a raw peripheral notification (UTF-8 text, possibly
// padded with whitespace or a trailing newline) into an attack slot.
func DecodeGesture(payload []byte) (string, int, bool) {
	g := strings.ToUpper(strings.TrimSpace(string(payload)))
	idx, ok := keyMap[g]
	return g, idx, ok
}
