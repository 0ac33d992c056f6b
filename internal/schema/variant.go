package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Variant identifies a game title whose tables share one record layout.
type Variant int

const (
	VariantUnknown Variant = 0
	ColdSteel3     Variant = 3
	ColdSteel4     Variant = 4
	Reverie        Variant = 5
	TokyoXanaduEX  Variant = 18
)

// Variants lists every variant with a registered schema, in tag order.
var Variants = []Variant{ColdSteel3, ColdSteel4, Reverie, TokyoXanaduEX}

func (v Variant) String() string {
	switch v {
	case ColdSteel3:
		return "CS3"
	case ColdSteel4:
		return "CS4"
	case Reverie:
		return "Reverie"
	case TokyoXanaduEX:
		return "TXe"
	default:
		return "unknown"
	}
}

// Supported reports whether v has a registered schema.
func (v Variant) Supported() bool {
	_, ok := registry[v]
	return ok
}

// ParseVariant accepts a numeric tag (3, 4, 5, 18) or a short name
// (cs3, cs4, reverie, txe).
func ParseVariant(s string) (Variant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "cs3":
		return ColdSteel3, nil
	case "cs4":
		return ColdSteel4, nil
	case "reverie", "rev":
		return Reverie, nil
	case "txe":
		return TokyoXanaduEX, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return VariantUnknown, fmt.Errorf("%w: %q", ErrUnsupportedVariant, s)
	}
	v := Variant(n)
	if !v.Supported() {
		return VariantUnknown, fmt.Errorf("%w: %d", ErrUnsupportedVariant, n)
	}
	return v, nil
}
