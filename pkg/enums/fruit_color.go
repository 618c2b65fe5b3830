package enums

import (
	"fmt"
	"strings"
)

// FruitColor is the closed set of fruit token categories a basket counts.
type FruitColor string

const (
	FruitColorGreen FruitColor = "green"
	FruitColorRed   FruitColor = "red"
	FruitColorGold  FruitColor = "gold"
)

var validFruitColors = []FruitColor{
	FruitColorGreen,
	FruitColorRed,
	FruitColorGold,
}

// FruitColors returns the categories in display order.
func FruitColors() []FruitColor {
	out := make([]FruitColor, len(validFruitColors))
	copy(out, validFruitColors)
	return out
}

// String implements fmt.Stringer.
func (c FruitColor) String() string {
	return string(c)
}

// IsValid reports whether the value is a known FruitColor.
func (c FruitColor) IsValid() bool {
	for _, candidate := range validFruitColors {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseFruitColor converts raw input into a FruitColor. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseFruitColor(value string) (FruitColor, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validFruitColors {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fruit color %q", value)
}
