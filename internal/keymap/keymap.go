// Package keymap maps host keyboard keys to the 16 key CHIP-8 keypad.
//
// The default layout puts the 4x4 keypad on the left side of a QWERTY
// keyboard:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
package keymap

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/retroenv/retrogolib/input"
)

// KeyCount is the number of keypad keys.
const KeyCount = 16

// ErrUnknownKey is returned for host keys that are not bound to a keypad key.
var ErrUnknownKey = errors.New("unknown key")

var qwerty = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Keymap binds host runes to keypad keys. Runes are case-insensitive.
type Keymap struct {
	bindings map[rune]uint8
}

// Default returns the QWERTY layout.
func Default() *Keymap {
	return &Keymap{
		bindings: maps.Clone(qwerty),
	}
}

// Bind maps the rune to the keypad key, replacing any previous binding
// of the rune.
func (k *Keymap) Bind(r rune, key uint8) error {
	if key >= KeyCount {
		return fmt.Errorf("keypad key $%X out of range", key)
	}
	if r == '#' || unicode.IsSpace(r) || !unicode.IsPrint(r) {
		return fmt.Errorf("rune %q can not be bound", r)
	}
	k.bindings[unicode.ToLower(r)] = key
	return nil
}

// Rune returns the keypad key bound to the rune.
func (k *Keymap) Rune(r rune) (uint8, bool) {
	key, ok := k.bindings[unicode.ToLower(r)]
	return key, ok
}

// Input returns the keypad key bound to a keyboard key of a GUI backend.
func (k *Keymap) Input(key input.Key) (uint8, bool) {
	r, ok := inputRune(key)
	if !ok {
		return 0, false
	}
	return k.Rune(r)
}

// Parse converts a key description to a keypad key. A description is either
// a single bound rune like "q" or a hexadecimal keypad key prefixed with #
// like "#a".
func (k *Keymap) Parse(s string) (uint8, error) {
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		value, err := strconv.ParseUint(hex, 16, 8)
		if err != nil || value >= KeyCount {
			return 0, fmt.Errorf("%w: '%s'", ErrUnknownKey, s)
		}
		return uint8(value), nil
	}

	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) {
		return 0, fmt.Errorf("%w: '%s'", ErrUnknownKey, s)
	}
	key, ok := k.Rune(r)
	if !ok {
		return 0, fmt.Errorf("%w: '%s'", ErrUnknownKey, s)
	}
	return key, nil
}

// inputRune converts letter and digit keys to their lowercase rune.
func inputRune(key input.Key) (rune, bool) {
	switch {
	case key >= input.Key0 && key <= input.Key9:
		return '0' + rune(key-input.Key0), true
	case key >= input.A && key <= input.Z:
		return 'a' + rune(key-input.A), true
	default:
		return 0, false
	}
}
