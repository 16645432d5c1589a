package entities

import "strings"

// NPILength is the fixed length of a National Provider Identifier.
const NPILength = 10

// Address is a provider practice location.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
	Full   string `json:"full"`
}

// Provider is a healthcare provider returned from the NPI registry.
type Provider struct {
	NPI                  string   `json:"npi"`
	Name                 string   `json:"name"`
	Specialty            string   `json:"specialty"`
	Address              Address  `json:"address"`
	Phone                string   `json:"phone,omitempty"`
	Distance             *float64 `json:"distance,omitempty"`
	Rating               float64  `json:"rating"`
	AcceptingNewPatients bool     `json:"acceptingNewPatients"`
}

// DedupKey identifies a provider record for deduplication.
func (p *Provider) DedupKey() string {
	return p.NPI + "|" + strings.ToLower(p.Name)
}

// ValidNPI reports whether s is exactly ten ASCII digits.
func ValidNPI(s string) bool {
	if len(s) != NPILength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
