package domain

import "strings"

// Address is the delivery address typed at checkout. Complement is the only
// optional field.
type Address struct {
	PostalCode   string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// AddressField pairs the name reported in validation errors with a value.
type AddressField struct {
	Name  string
	Value string
}

// RequiredFields returns the mandatory fields in validation order.
func (a Address) RequiredFields() []AddressField {
	return []AddressField{
		{"address.postalCode", a.PostalCode},
		{"address.street", a.Street},
		{"address.number", a.Number},
		{"address.neighborhood", a.Neighborhood},
		{"address.city", a.City},
		{"address.state", a.State},
	}
}

// Normalize trims every field and upper-cases the state (UF).
func (a Address) Normalize() Address {
	return Address{
		PostalCode:   strings.TrimSpace(a.PostalCode),
		Street:       strings.TrimSpace(a.Street),
		Number:       strings.TrimSpace(a.Number),
		Complement:   strings.TrimSpace(a.Complement),
		Neighborhood: strings.TrimSpace(a.Neighborhood),
		City:         strings.TrimSpace(a.City),
		State:        strings.ToUpper(strings.TrimSpace(a.State)),
	}
}

func (a Address) IsZero() bool {
	return a == Address{}
}
