package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a 24-bit RGB color. Alpha channels in the input are accepted and
// dropped.
type Color struct {
	R, G, B uint8
}

// ParseColor accepts "#rgb", "#rgba", "#rrggbb", "#rrggbbaa" and
// "rgb(r, g, b)".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		return parseHex(hex)
	}
	if inner, ok := strings.CutPrefix(s, "rgb("); ok {
		if inner, ok = strings.CutSuffix(inner, ")"); ok {
			return parseRGB(inner)
		}
	}
	return Color{}, fmt.Errorf("invalid color %q: expected rgb(r, g, b), #rrggbb or #rgb", s)
}

func parseHex(hex string) (Color, error) {
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color #%s: %w", hex, err)
	}
	switch len(hex) {
	case 3, 4:
		if len(hex) == 4 {
			v >>= 4
		}
		r := uint8(v >> 8 & 0xf)
		g := uint8(v >> 4 & 0xf)
		b := uint8(v & 0xf)
		return Color{r<<4 | r, g<<4 | g, b<<4 | b}, nil
	case 6, 8:
		if len(hex) == 8 {
			v >>= 8
		}
		return Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
	}
	return Color{}, fmt.Errorf("invalid color #%s: expected 3, 4, 6 or 8 hex digits", hex)
}

func parseRGB(inner string) (Color, error) {
	parts := strings.Split(inner, ",")
	if len(parts) != 3 {
		return Color{}, fmt.Errorf("invalid color rgb(%s): expected three channels", inner)
	}
	var ch [3]uint8
	for i, name := range [...]string{"red", "green", "blue"} {
		n, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid %s channel %q: %w", name, strings.TrimSpace(parts[i]), err)
		}
		ch[i] = uint8(n)
	}
	return Color{ch[0], ch[1], ch[2]}, nil
}

// String formats the color as #rrggbb.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// UnmarshalText implements encoding.TextUnmarshaler for the TOML decoder.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
