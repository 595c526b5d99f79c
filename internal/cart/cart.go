package cart

import (
	"github.com/simkidd/dwec-winery-storefront/pkg/types"
)

// Line is one cart entry, unique per (product, variant) identity.
type Line struct {
	ID       string                 `json:"id"`
	Product  types.ProductSnapshot  `json:"product"`
	Variant  *types.VariantSnapshot `json:"variant,omitempty"`
	Quantity int                    `json:"quantity"`
}

// UnitPriceKobo resolves the effective unit price for the line.
func (l Line) UnitPriceKobo() int {
	return types.UnitPriceKobo(l.Product, l.Variant)
}

// LineID derives the deterministic identity key used to deduplicate lines.
func LineID(productID, variantID string) string {
	if variantID == "" {
		return productID
	}
	return productID + "-" + variantID
}

// State is an ordered collection of cart lines. Insertion order is preserved
// because it drives checkout review order. All transitions uphold two
// invariants: at most one line per identity, and quantity never below 1.
type State struct {
	Lines []Line `json:"lines"`
}

// AddItem accumulates quantity onto an existing identity or appends a new
// line. Quantities at or below zero count as one.
func (s *State) AddItem(product types.ProductSnapshot, variant *types.VariantSnapshot, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	variantID := ""
	if variant != nil {
		variantID = variant.ID
	}
	id := LineID(product.ID, variantID)

	for i := range s.Lines {
		if s.Lines[i].ID == id {
			s.Lines[i].Quantity += quantity
			return
		}
	}

	s.Lines = append(s.Lines, Line{
		ID:       id,
		Product:  product,
		Variant:  variant,
		Quantity: quantity,
	})
}

// RemoveItem deletes the line with the given identity. Reports whether a
// line was found; a miss leaves the state untouched.
func (s *State) RemoveItem(id string) bool {
	for i := range s.Lines {
		if s.Lines[i].ID == id {
			s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// SetQuantity sets the line quantity, clamping to a minimum of 1. Reports
// whether a line was found.
func (s *State) SetQuantity(id string, quantity int) bool {
	if quantity < 1 {
		quantity = 1
	}
	for i := range s.Lines {
		if s.Lines[i].ID == id {
			s.Lines[i].Quantity = quantity
			return true
		}
	}
	return false
}

// Increment raises the line quantity by one.
func (s *State) Increment(id string) bool {
	for i := range s.Lines {
		if s.Lines[i].ID == id {
			s.Lines[i].Quantity++
			return true
		}
	}
	return false
}

// Decrement lowers the line quantity by one, flooring at 1. It never removes
// the line.
func (s *State) Decrement(id string) bool {
	for i := range s.Lines {
		if s.Lines[i].ID == id {
			if s.Lines[i].Quantity > 1 {
				s.Lines[i].Quantity--
			}
			return true
		}
	}
	return false
}

// Clear empties the collection.
func (s *State) Clear() {
	s.Lines = nil
}

// IsEmpty reports whether the cart holds no lines.
func (s *State) IsEmpty() bool {
	return len(s.Lines) == 0
}

// SubtotalKobo sums unit price times quantity across all lines.
func (s *State) SubtotalKobo() int {
	total := 0
	for _, line := range s.Lines {
		total += line.UnitPriceKobo() * line.Quantity
	}
	return total
}

// Snapshot returns a deep copy safe to hand to readers.
func (s *State) Snapshot() State {
	copied := State{}
	if len(s.Lines) == 0 {
		return copied
	}
	copied.Lines = make([]Line, len(s.Lines))
	copy(copied.Lines, s.Lines)
	for i := range copied.Lines {
		if v := copied.Lines[i].Variant; v != nil {
			dup := *v
			copied.Lines[i].Variant = &dup
		}
	}
	return copied
}
