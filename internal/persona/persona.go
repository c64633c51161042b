package persona

import "civicsim/internal/domain"

// Seed provides the built-in archetypes used when no persona file is configured.
func Seed() []domain.Persona {
	return []domain.Persona{
		{
			Type:               "progressive_urban",
			PreferredLocations: []string{"CA", "NY", "WA", "IL", "MA"},
			Interests:          []string{"climate", "housing", "transit", "healthcare"},
			PostingStyle:       "passionate",
		},
		{
			Type:               "conservative_rural",
			PreferredLocations: []string{"TX", "OK", "KS", "MT", "GA"},
			Interests:          []string{"taxes", "agriculture", "second amendment", "small government"},
			PostingStyle:       "direct",
		},
		{
			Type:               "moderate_suburban",
			PreferredLocations: []string{"OH", "PA", "MI", "AZ", "VA"},
			Interests:          []string{"schools", "public safety", "economy", "infrastructure"},
			PostingStyle:       "measured",
		},
		{
			Type:               "libertarian",
			PreferredLocations: []string{"NH", "NV", "CO", "TX"},
			Interests:          []string{"civil liberties", "regulation", "taxes", "technology"},
			PostingStyle:       "contrarian",
		},
		{
			Type:               "young_activist",
			PreferredLocations: []string{"CA", "NY", "MA", "OR", "IL"},
			Interests:          []string{"student debt", "climate", "voting rights", "jobs"},
			PostingStyle:       "energetic",
		},
		{
			Type:               "retiree",
			PreferredLocations: []string{"FL", "AZ", "SC", "NC"},
			Interests:          []string{"social security", "medicare", "veterans", "community"},
			PostingStyle:       "reflective",
		},
		{
			Type:               "small_business_owner",
			PreferredLocations: []string{"TX", "FL", "GA", "OH", "NC"},
			Interests:          []string{"economy", "regulation", "taxes", "local business"},
			PostingStyle:       "practical",
		},
		{
			Type:               "local_advocate",
			PreferredLocations: []string{"MN", "WI", "CO", "OR", "PA"},
			Interests:          []string{"parks", "city council", "libraries", "zoning"},
			PostingStyle:       "neighborly",
		},
	}
}

// SeedLocations is the default city table personas are matched against.
func SeedLocations() []domain.Location {
	return []domain.Location{
		{City: "Los Angeles", State: "CA"},
		{City: "San Diego", State: "CA"},
		{City: "Sacramento", State: "CA"},
		{City: "New York", State: "NY"},
		{City: "Buffalo", State: "NY"},
		{City: "Seattle", State: "WA"},
		{City: "Spokane", State: "WA"},
		{City: "Chicago", State: "IL"},
		{City: "Boston", State: "MA"},
		{City: "Austin", State: "TX"},
		{City: "Houston", State: "TX"},
		{City: "Amarillo", State: "TX"},
		{City: "Tulsa", State: "OK"},
		{City: "Wichita", State: "KS"},
		{City: "Billings", State: "MT"},
		{City: "Atlanta", State: "GA"},
		{City: "Savannah", State: "GA"},
		{City: "Columbus", State: "OH"},
		{City: "Cleveland", State: "OH"},
		{City: "Pittsburgh", State: "PA"},
		{City: "Philadelphia", State: "PA"},
		{City: "Detroit", State: "MI"},
		{City: "Grand Rapids", State: "MI"},
		{City: "Phoenix", State: "AZ"},
		{City: "Tucson", State: "AZ"},
		{City: "Richmond", State: "VA"},
		{City: "Manchester", State: "NH"},
		{City: "Reno", State: "NV"},
		{City: "Denver", State: "CO"},
		{City: "Portland", State: "OR"},
		{City: "Miami", State: "FL"},
		{City: "Tampa", State: "FL"},
		{City: "Charleston", State: "SC"},
		{City: "Raleigh", State: "NC"},
		{City: "Minneapolis", State: "MN"},
		{City: "Madison", State: "WI"},
	}
}
