package vt

// ApplySGR applies a parsed list of SGR parameters (already split on ';')
// to style, mutating it in place. Supports the attribute set of spec §4.3:
// reset, bold/italic/underline/reverse on/off, 16/256/truecolor fg+bg.
func ApplySGR(style *CellStyle, params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			*style = DefaultStyle
		case p == 1:
			style.Bold = true
		case p == 22:
			style.Bold = false
		case p == 3:
			style.Italic = true
		case p == 23:
			style.Italic = false
		case p == 4:
			style.Underline = true
		case p == 24:
			style.Underline = false
		case p == 7:
			style.Reverse = true
		case p == 27:
			style.Reverse = false
		case p == 39:
			style.Fg = DefaultColor
		case p == 49:
			style.Bg = DefaultColor
		case p >= 30 && p <= 37:
			style.Fg = NamedColor(uint8(p - 30))
		case p >= 40 && p <= 47:
			style.Bg = NamedColor(uint8(p - 40))
		case p >= 90 && p <= 97:
			style.Fg = NamedColor(uint8(p - 90 + 8))
		case p >= 100 && p <= 107:
			style.Bg = NamedColor(uint8(p - 100 + 8))
		case p == 38:
			consumed := applyExtendedColor(&style.Fg, params[i+1:])
			i += consumed
		case p == 48:
			consumed := applyExtendedColor(&style.Bg, params[i+1:])
			i += consumed
		}
	}
}

// applyExtendedColor parses the ";5;N" (256-color) or ";2;R;G;B"
// (truecolor) tail following a 38/48 SGR code, returning how many extra
// params it consumed.
func applyExtendedColor(c *Color, rest []int) int {
	if len(rest) == 0 {
		return 0
	}
	switch rest[0] {
	case 5:
		if len(rest) >= 2 {
			*c = IndexedColor(uint8(rest[1]))
			return 2
		}
	case 2:
		if len(rest) >= 4 {
			*c = RGBColor(uint8(rest[1]), uint8(rest[2]), uint8(rest[3]))
			return 4
		}
	}
	return len(rest)
}
