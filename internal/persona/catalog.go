package persona

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"civicsim/internal/domain"
)

// Catalog is the static persona and location lookup used by provisioning.
type Catalog struct {
	mu        sync.Mutex
	rng       *rand.Rand
	personas  []domain.Persona
	locations []domain.Location
}

// NewCatalog copies the supplied tables. Empty tables fall back to the seeds.
func NewCatalog(personas []domain.Persona, locations []domain.Location, rng *rand.Rand) *Catalog {
	if len(personas) == 0 {
		personas = Seed()
	}
	if len(locations) == 0 {
		locations = SeedLocations()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Catalog{
		rng:       rng,
		personas:  append([]domain.Persona(nil), personas...),
		locations: append([]domain.Location(nil), locations...),
	}
}

func (c *Catalog) List() []domain.Persona {
	return append([]domain.Persona(nil), c.personas...)
}

func (c *Catalog) FindByType(personaType string) (domain.Persona, bool) {
	for _, p := range c.personas {
		if p.Type == personaType {
			return p, true
		}
	}
	return domain.Persona{}, false
}

func (c *Catalog) RandomPersona() domain.Persona {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.personas[c.rng.IntN(len(c.personas))]
}

// MatchLocation prefers a location in one of the persona's preferred states
// and falls back to any known location.
func (c *Catalog) MatchLocation(p domain.Persona) domain.Location {
	matches := make([]domain.Location, 0, len(c.locations))
	for _, loc := range c.locations {
		if slices.Contains(p.PreferredLocations, loc.State) {
			matches = append(matches, loc)
		}
	}
	if len(matches) == 0 {
		matches = c.locations
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return matches[c.rng.IntN(len(matches))]
}

type fileTables struct {
	Personas  []domain.Persona  `yaml:"personas"`
	Locations []domain.Location `yaml:"locations"`
}

// LoadFile reads persona and location tables from a YAML document.
func LoadFile(path string) ([]domain.Persona, []domain.Location, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read persona file: %w", err)
	}
	var tables fileTables
	if err := yaml.Unmarshal(raw, &tables); err != nil {
		return nil, nil, fmt.Errorf("parse persona file: %w", err)
	}
	if len(tables.Personas) == 0 {
		return nil, nil, errors.New("persona file defines no personas")
	}
	for i, p := range tables.Personas {
		if p.Type == "" {
			return nil, nil, fmt.Errorf("persona %d has no type", i)
		}
	}
	return tables.Personas, tables.Locations, nil
}
