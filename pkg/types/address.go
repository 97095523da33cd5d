package types

import "strings"

// Address is a delivery address as collected at checkout.
type Address struct {
	Street       string `json:"street"`
	City         string `json:"city"`
	Region       string `json:"region"`
	PostalCode   string `json:"postal_code,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// Normalized returns a copy with surrounding whitespace removed from every field.
func (a Address) Normalized() Address {
	return Address{
		Street:       strings.TrimSpace(a.Street),
		City:         strings.TrimSpace(a.City),
		Region:       strings.TrimSpace(a.Region),
		PostalCode:   strings.TrimSpace(a.PostalCode),
		Instructions: strings.TrimSpace(a.Instructions),
	}
}

// OneLine renders the address for display and payment descriptions.
func (a Address) OneLine() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.City, a.Region, a.PostalCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
