package model

import (
	"strings"

	"github.com/ny-randriantsarafara/chorographer/internal/geo"
)

// Address is a street address assembled from addr:* tags.
type Address struct {
	Street      string
	Housenumber string
	City        string
	Postcode    string
}

// IsEmpty reports whether no address component is set.
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// Formatted renders the address as a single display line.
func (a Address) Formatted() string {
	var parts []string
	if a.Housenumber != "" && a.Street != "" {
		parts = append(parts, a.Housenumber+" "+a.Street)
	} else if a.Street != "" {
		parts = append(parts, a.Street)
	}
	if a.City != "" {
		parts = append(parts, a.City)
	}
	if a.Postcode != "" {
		parts = append(parts, a.Postcode)
	}
	return strings.Join(parts, ", ")
}

// POI is a point of interest extracted from a tagged OSM node.
type POI struct {
	ID           int64
	Coordinates  geo.Coordinates
	Category     POICategory
	Subcategory  string
	Name         string
	Address      Address
	Phone        string
	OpeningHours string // raw opening_hours tag
	PriceRange   int    // 1-4 scale, 0 when unknown
	Website      string
	Popularity   int
	Tags         map[string]string
}

// HasName reports whether the POI carries a non-blank name.
func (p POI) HasName() bool {
	return strings.TrimSpace(p.Name) != ""
}

// Is24x7 reports whether the POI advertises round-the-clock hours.
func (p POI) Is24x7() bool {
	return strings.TrimSpace(p.OpeningHours) == "24/7"
}

// NameNormalized is the lowercased, whitespace-collapsed name for search.
func (p POI) NameNormalized() string {
	return NormalizeText(p.Name)
}

// SearchText combines name-like fields into a best-effort search string.
// Falls back to the category tags when the POI is unnamed.
func (p POI) SearchText() string {
	var parts []string
	if p.Name != "" {
		parts = append(parts, p.Name)
	}
	for _, key := range []string{"brand", "operator", "old_name"} {
		if v := p.Tags[key]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		for _, key := range []string{"amenity", "shop", "tourism"} {
			if v := p.Tags[key]; v != "" {
				parts = append(parts, v)
				break
			}
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "unknown")
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// SearchTextNormalized is the normalized form of SearchText.
func (p POI) SearchTextNormalized() string {
	return NormalizeText(p.SearchText())
}

// NormalizeText lowercases, trims and collapses whitespace runs.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
