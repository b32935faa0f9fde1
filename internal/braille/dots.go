package braille

import "fmt"

// CellDots is the number of dot positions in one cell (2 columns x 3 rows).
const CellDots = 6

// DotMask is a six-bit dot pattern. Bit i set raises cell position i.
//
// Positions follow the actuator wiring rather than the printed dot numbers:
// bits 0..5 correspond to Braille dots 1, 2, 4, 5, 3, 6.
type DotMask uint8

const (
	// MaskBits covers every valid position; nothing above bit 5 is ever set.
	MaskBits DotMask = 0b111111

	// CapitalPrefix marks the next cell as uppercase (dot 6).
	CapitalPrefix DotMask = 0b100000
	// NumberPrefix marks the following letters a..j as digits (dots 3-4-5-6).
	NumberPrefix DotMask = 0b111100
)

// Has reports whether position i is raised.
func (m DotMask) Has(i int) bool {
	if i < 0 || i >= CellDots {
		return false
	}
	return m&(1<<uint(i)) != 0
}

// Count returns the number of raised positions.
func (m DotMask) Count() int {
	n := 0
	for i := 0; i < CellDots; i++ {
		if m.Has(i) {
			n++
		}
	}
	return n
}

// Single returns the mask with only position i raised.
func Single(i int) DotMask {
	if i < 0 || i >= CellDots {
		return 0
	}
	return DotMask(1) << uint(i)
}

func (m DotMask) String() string {
	return fmt.Sprintf("0b%06b", uint8(m&MaskBits))
}

// letters holds a..z in order.
var letters = [26]DotMask{
	0b000001, // a
	0b000011, // b
	0b000101, // c
	0b001101, // d
	0b001001, // e
	0b000111, // f
	0b001111, // g
	0b001011, // h
	0b000110, // i
	0b001110, // j
	0b010001, // k
	0b010011, // l
	0b010101, // m
	0b011101, // n
	0b011001, // o
	0b010111, // p
	0b011111, // q
	0b011011, // r
	0b010110, // s
	0b011110, // t
	0b110001, // u
	0b110011, // v
	0b101110, // w
	0b110101, // x
	0b111101, // y
	0b111001, // z
}

// punctuation shares one mask between '!' and both parentheses.
var punctuation = map[rune]DotMask{
	',':  0b000010,
	';':  0b010010,
	':':  0b001010,
	'.':  0b101010,
	'?':  0b110010,
	'!':  0b010110,
	'-':  0b110000,
	'\'': 0b010000,
	'"':  0b111000,
	'(':  0b010110,
	')':  0b010110,
}

// Letter returns the mask for a lowercase or uppercase ASCII letter.
func Letter(r rune) (DotMask, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return letters[r-'a'], true
	case r >= 'A' && r <= 'Z':
		return letters[r-'A'], true
	}
	return 0, false
}

// Punctuation returns the mask for a supported punctuation character.
func Punctuation(r rune) (DotMask, bool) {
	m, ok := punctuation[r]
	return m, ok
}

// DigitLetter maps '1'..'9' to 'a'..'i' and '0' to 'j'.
func DigitLetter(r rune) (rune, bool) {
	switch {
	case r == '0':
		return 'j', true
	case r >= '1' && r <= '9':
		return 'a' + (r - '1'), true
	}
	return 0, false
}
