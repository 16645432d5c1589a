package entities

import "strings"

// Specialty is a standardized medical specialty with its NPPES taxonomy code.
type Specialty struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Category string `json:"category"`
}

// specialtyCatalog maps lowercase specialty names to their taxonomy entries.
// Derived from the NPPES provider taxonomy; categories follow the registry's
// top-level groupings.
var specialtyCatalog = map[string]Specialty{
	"allergy and immunology":    {Name: "Allergy and Immunology", Code: "207K00000X", Category: "Allopathic & Osteopathic Physicians"},
	"cardiology":                {Name: "Cardiology", Code: "207RC0000X", Category: "Allopathic & Osteopathic Physicians"},
	"dermatology":               {Name: "Dermatology", Code: "207N00000X", Category: "Allopathic & Osteopathic Physicians"},
	"emergency medicine":        {Name: "Emergency Medicine", Code: "207P00000X", Category: "Allopathic & Osteopathic Physicians"},
	"endocrinology":             {Name: "Endocrinology", Code: "207RE0101X", Category: "Allopathic & Osteopathic Physicians"},
	"family medicine":           {Name: "Family Medicine", Code: "207Q00000X", Category: "Allopathic & Osteopathic Physicians"},
	"gastroenterology":          {Name: "Gastroenterology", Code: "207RG0100X", Category: "Allopathic & Osteopathic Physicians"},
	"general surgery":           {Name: "General Surgery", Code: "208600000X", Category: "Allopathic & Osteopathic Physicians"},
	"hematology and oncology":   {Name: "Hematology and Oncology", Code: "207RH0003X", Category: "Allopathic & Osteopathic Physicians"},
	"infectious disease":        {Name: "Infectious Disease", Code: "207RI0200X", Category: "Allopathic & Osteopathic Physicians"},
	"internal medicine":         {Name: "Internal Medicine", Code: "207R00000X", Category: "Allopathic & Osteopathic Physicians"},
	"nephrology":                {Name: "Nephrology", Code: "207RN0300X", Category: "Allopathic & Osteopathic Physicians"},
	"neurology":                 {Name: "Neurology", Code: "2084N0400X", Category: "Allopathic & Osteopathic Physicians"},
	"obstetrics and gynecology": {Name: "Obstetrics and Gynecology", Code: "207V00000X", Category: "Allopathic & Osteopathic Physicians"},
	"ophthalmology":             {Name: "Ophthalmology", Code: "207W00000X", Category: "Allopathic & Osteopathic Physicians"},
	"orthopedic surgery":        {Name: "Orthopedic Surgery", Code: "207X00000X", Category: "Allopathic & Osteopathic Physicians"},
	"otolaryngology":            {Name: "Otolaryngology", Code: "207Y00000X", Category: "Allopathic & Osteopathic Physicians"},
	"pediatrics":                {Name: "Pediatrics", Code: "208000000X", Category: "Allopathic & Osteopathic Physicians"},
	"physical medicine":         {Name: "Physical Medicine", Code: "208100000X", Category: "Allopathic & Osteopathic Physicians"},
	"podiatry":                  {Name: "Podiatry", Code: "213E00000X", Category: "Podiatric Medicine & Surgery Service Providers"},
	"psychiatry":                {Name: "Psychiatry", Code: "2084P0800X", Category: "Allopathic & Osteopathic Physicians"},
	"pulmonology":               {Name: "Pulmonology", Code: "207RP1001X", Category: "Allopathic & Osteopathic Physicians"},
	"rheumatology":              {Name: "Rheumatology", Code: "207RR0500X", Category: "Allopathic & Osteopathic Physicians"},
	"urology":                   {Name: "Urology", Code: "208800000X", Category: "Allopathic & Osteopathic Physicians"},
}

// specialtyOrder fixes the catalog listing order for the specialties endpoint.
var specialtyOrder = []string{
	"allergy and immunology",
	"cardiology",
	"dermatology",
	"emergency medicine",
	"endocrinology",
	"family medicine",
	"gastroenterology",
	"general surgery",
	"hematology and oncology",
	"infectious disease",
	"internal medicine",
	"nephrology",
	"neurology",
	"obstetrics and gynecology",
	"ophthalmology",
	"orthopedic surgery",
	"otolaryngology",
	"pediatrics",
	"physical medicine",
	"podiatry",
	"psychiatry",
	"pulmonology",
	"rheumatology",
	"urology",
}

// TaxonomyFor returns the taxonomy code for a free-text specialty name.
// Unmapped names pass through unchanged so the registry can still match
// them by description.
func TaxonomyFor(name string) string {
	if s, ok := specialtyCatalog[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s.Code
	}
	return name
}

// AllSpecialties returns the full specialty catalog in a stable order.
func AllSpecialties() []Specialty {
	out := make([]Specialty, 0, len(specialtyOrder))
	for _, key := range specialtyOrder {
		out = append(out, specialtyCatalog[key])
	}
	return out
}
