package braille

// Mode is the encoder state carried between characters of one line.
type Mode uint8

const (
	// Normal is the initial state; digits need a number prefix.
	Normal Mode = iota
	// Numeric follows a digit; further digits reuse the prefix already sent.
	Numeric
)

func (m Mode) String() string {
	if m == Numeric {
		return "numeric"
	}
	return "normal"
}

// Glyph is the encoder output for one input character.
// A space yields no masks and sets WordBreak.
type Glyph struct {
	Char      rune
	Masks     []DotMask
	WordBreak bool
}

// Empty reports whether the glyph renders nothing at all.
func (g Glyph) Empty() bool {
	return len(g.Masks) == 0 && !g.WordBreak
}

// Encode translates one character given the current mode and updates it.
// Unrecognised characters produce an empty glyph and leave the mode alone.
func Encode(r rune, mode *Mode) Glyph {
	g := Glyph{Char: r}

	if r == ' ' {
		*mode = Normal
		g.WordBreak = true
		return g
	}

	if m, ok := Punctuation(r); ok {
		*mode = Normal
		g.Masks = []DotMask{m}
		return g
	}

	if l, ok := DigitLetter(r); ok {
		if *mode != Numeric {
			g.Masks = append(g.Masks, NumberPrefix)
			*mode = Numeric
		}
		m, _ := Letter(l)
		g.Masks = append(g.Masks, m)
		return g
	}

	if m, ok := Letter(r); ok {
		if r >= 'A' && r <= 'Z' {
			g.Masks = append(g.Masks, CapitalPrefix)
		}
		g.Masks = append(g.Masks, m)
		*mode = Normal
		return g
	}

	return g
}

// EncodeLine encodes a whole line starting from Normal mode.
// Dropped characters are omitted from the result.
func EncodeLine(line string) []Glyph {
	mode := Normal
	out := make([]Glyph, 0, len(line))
	for _, r := range line {
		g := Encode(r, &mode)
		if g.Empty() {
			continue
		}
		out = append(out, g)
	}
	return out
}

// Masks flattens an encoded line into the masks it renders, in order.
func Masks(glyphs []Glyph) []DotMask {
	var out []DotMask
	for _, g := range glyphs {
		out = append(out, g.Masks...)
	}
	return out
}
