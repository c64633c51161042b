// Package content composes persona-flavored posts and replies from fixed
// template pools. Posts are unique for the lifetime of a Generator.
package content

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"civicsim/internal/domain"
)

const topicWords = 6

type Config struct {
	// PoliticalRatio is the probability of drawing from the national pool.
	PoliticalRatio float64
	// ControversialRatio is the probability of a hot-button national category.
	ControversialRatio float64
}

type Generator struct {
	cfg      Config
	national []Category
	local    []Category

	mu   sync.Mutex
	rng  *rand.Rand
	seen map[string]struct{}
}

func NewGenerator(cfg Config, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{
		cfg:      cfg,
		national: nationalCategories(),
		local:    localCategories(),
		rng:      rng,
		seen:     make(map[string]struct{}),
	}
}

// GenerateContent returns a post that has not been emitted before by this generator.
func (g *Generator) GenerateContent(p domain.Persona) domain.ContentItem {
	g.mu.Lock()
	defer g.mu.Unlock()

	political := g.rng.Float64() < g.cfg.PoliticalRatio
	var category Category
	if political {
		category = g.pickNational()
	} else {
		category = g.local[g.rng.IntN(len(g.local))]
	}

	text := category.Templates[g.rng.IntN(len(category.Templates))]
	text = personalize(text, p)
	text = g.uniqueLocked(text)
	g.seen[text] = struct{}{}

	return domain.ContentItem{
		Text:        text,
		Category:    category.Name,
		IsPolitical: political,
	}
}

func (g *Generator) pickNational() Category {
	var hot, mainstream []Category
	for _, c := range g.national {
		if c.Controversial {
			hot = append(hot, c)
		} else {
			mainstream = append(mainstream, c)
		}
	}
	pool := mainstream
	if len(hot) > 0 && (len(mainstream) == 0 || g.rng.Float64() < g.cfg.ControversialRatio) {
		pool = hot
	}
	return pool[g.rng.IntN(len(pool))]
}

func personalize(text string, p domain.Persona) string {
	if clause, ok := personaClauses[p.Type]; ok {
		return text + " " + clause
	}
	return text
}

func (g *Generator) uniqueLocked(text string) string {
	candidate := text
	for attempt := 0; ; attempt++ {
		if _, dup := g.seen[candidate]; !dup {
			return candidate
		}
		candidate = mutate(text, attempt)
	}
}

// mutate is deterministic in (text, attempt): suffixes first, then prefixes,
// then a numeric marker that can never repeat.
func mutate(text string, attempt int) string {
	switch {
	case attempt < len(variantSuffixes):
		return text + " " + variantSuffixes[attempt]
	case attempt < len(variantSuffixes)+len(variantPrefixes):
		return variantPrefixes[attempt-len(variantSuffixes)] + " " + text
	default:
		return fmt.Sprintf("%s (%d)", text, attempt-len(variantSuffixes)-len(variantPrefixes)+2)
	}
}

// GenerateResponse builds a reply to originalText. Replies may repeat.
func (g *Generator) GenerateResponse(originalText string) string {
	g.mu.Lock()
	tmpl := responseTemplates[g.rng.IntN(len(responseTemplates))]
	reason := responseReasons[g.rng.IntN(len(responseReasons))]
	fact := responseFacts[g.rng.IntN(len(responseFacts))]
	g.mu.Unlock()

	return strings.NewReplacer(
		"{topic}", extractTopic(originalText),
		"{reason}", reason,
		"{fact}", fact,
	).Replace(tmpl)
}

func extractTopic(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return "this"
	}
	if len(words) > topicWords {
		words = words[:topicWords]
	}
	topic := strings.TrimRight(strings.Join(words, " "), ".,!?;:")
	if topic == "" {
		return "this"
	}
	return topic
}

// Seen reports how many distinct posts have been emitted.
func (g *Generator) Seen() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}
