package button

// Variant selects one of the button's fixed visual styles.
//
// The zero value is the default variant. Strings other than the recognised
// constants are accepted and style exactly like the default.
type Variant string

const (
	VariantDefault   Variant = ""
	VariantPrimary   Variant = "primary"
	VariantSecondary Variant = "secondary"
)

// Variants returns the recognised non-default variants in declaration order.
func Variants() []Variant {
	return []Variant{VariantPrimary, VariantSecondary}
}

// Known reports whether v is one of the recognised variants.
func (v Variant) Known() bool {
	_, ok := palette[v]
	return ok
}

// String returns the variant tag, or "default" for the zero value.
func (v Variant) String() string {
	if v == VariantDefault {
		return "default"
	}
	return string(v)
}
