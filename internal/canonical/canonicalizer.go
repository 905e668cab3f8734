// Package canonical implements the per-cluster representative-value
// selection and confidence computation the spec calls the
// Canonicalizer (§4.6). Grounded on the teacher's
// resolver.evaluateMatches for the field-selection shape, and on
// canonical_session.go's priority-list selectCanonical for the
// "first non-empty by priority" pattern reused here for email/phone.
package canonical

import (
	"regexp"
	"strings"

	"github.com/aegisshield/entity-resolution/internal/config"
	"github.com/aegisshield/entity-resolution/internal/model"
	"github.com/aegisshield/entity-resolution/internal/similarity"
)

// singletonConfidence is the fixed confidence assigned to a
// one-member cluster, per §4.6.
const singletonConfidence = 0.7

// sizeBonusPerMember and sizeBonusCap implement
// min(0.05 * |cluster|, 0.2).
const (
	sizeBonusPerMember = 0.05
	sizeBonusCap       = 0.2
)

var wordSplit = regexp.MustCompile(`[^a-z0-9]+`)

// Canonicalizer turns clusters into entities.
type Canonicalizer struct {
	kernel              *similarity.Kernel
	businessSuffixTokens map[string]struct{}
	pepTokens            map[string]struct{}

	// idWidth is the zero-padding width for generated entity
	// identifiers (an Open Question the spec leaves to the
	// implementation — see DESIGN.md).
	idWidth int
}

// New builds a Canonicalizer from the resolved configuration.
func New(kernel *similarity.Kernel, cfg config.Config) *Canonicalizer {
	return &Canonicalizer{
		kernel:               kernel,
		businessSuffixTokens: toSet(cfg.BusinessSuffixTokens),
		pepTokens:            toSet(cfg.PEPTokens),
		idWidth:              6,
	}
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}

// CanonicalizeAll converts clusters (assumed already ordered by
// ascending minimum member index) into entities, assigning
// contiguous, zero-padded identifiers in that order.
func (c *Canonicalizer) CanonicalizeAll(records []model.NormalizedRecord, clusters []model.Cluster) []model.Entity {
	entities := make([]model.Entity, len(clusters))
	for i, cl := range clusters {
		entities[i] = c.Canonicalize(records, cl, i)
	}
	return entities
}

// Canonicalize builds one entity from a cluster. emissionIndex is the
// cluster's position in emission order, used for the entity id.
func (c *Canonicalizer) Canonicalize(records []model.NormalizedRecord, cl model.Cluster, emissionIndex int) model.Entity {
	members := make([]model.NormalizedRecord, len(cl.Members))
	for i, idx := range cl.Members {
		members[i] = records[idx]
	}

	entity := model.Entity{
		ID:         formatID(emissionIndex, c.idWidth),
		Members:    memberIDs(members),
		Name:       longestNonEmpty(members, func(r model.NormalizedRecord) string { return r.PartyRecord.Name }),
		Email:      firstNonEmpty(members, func(r model.NormalizedRecord) string { return r.PartyRecord.Email }),
		Phone:      firstNonEmpty(members, func(r model.NormalizedRecord) string { return r.PartyRecord.Phone }),
		Address:    longestNonEmpty(members, func(r model.NormalizedRecord) string { return r.PartyRecord.Address }),
		Country:    modalNonEmpty(members, func(r model.NormalizedRecord) string { return r.PartyRecord.Country }),
		Sources:    sourceSet(members),
		Confidence: c.confidence(members),
	}
	entity.Type = c.classify(members)
	entity.PEP = c.isPEP(members)

	return entity
}

func formatID(emissionIndex, width int) string {
	s := []byte("000000000000")[:width]
	n := emissionIndex + 1
	for i := width - 1; i >= 0 && n > 0; i-- {
		s[i] = byte('0' + n%10)
		n /= 10
	}
	return string(s)
}

func memberIDs(members []model.NormalizedRecord) []string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.PartyRecord.ID
	}
	return ids
}

func longestNonEmpty(members []model.NormalizedRecord, field func(model.NormalizedRecord) string) string {
	best := ""
	for _, m := range members {
		v := field(m)
		if v == "" {
			continue
		}
		if len(v) > len(best) {
			best = v
		}
	}
	return best
}

func firstNonEmpty(members []model.NormalizedRecord, field func(model.NormalizedRecord) string) string {
	for _, m := range members {
		if v := field(m); v != "" {
			return v
		}
	}
	return ""
}

func modalNonEmpty(members []model.NormalizedRecord, field func(model.NormalizedRecord) string) string {
	counts := make(map[string]int)
	var order []string
	for _, m := range members {
		v := field(m)
		if v == "" {
			continue
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	best, bestCount := "", 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

func sourceSet(members []model.NormalizedRecord) []string {
	seen := make(map[string]struct{})
	var sources []string
	for _, m := range members {
		if m.PartyRecord.Source == "" {
			continue
		}
		if _, ok := seen[m.PartyRecord.Source]; ok {
			continue
		}
		seen[m.PartyRecord.Source] = struct{}{}
		sources = append(sources, m.PartyRecord.Source)
	}
	return sources
}

// confidence is 0.7 for a singleton, or the mean pairwise
// record-level similarity across the cluster plus a size bonus,
// clamped to 1.0, per §4.6. Uses Kernel.FullRecord rather than
// Kernel.Record: two members can be in the same cluster only because
// a third member transitively linked them, so their direct name
// similarity may be low even though other fields (e.g. a shared
// address) agree. Record's early-termination shortcut would collapse
// that pair to a near-zero name-only score; FullRecord always
// evaluates every field, matching §4.6's "mean pairwise record-level
// similarity" literally.
func (c *Canonicalizer) confidence(members []model.NormalizedRecord) float64 {
	if len(members) <= 1 {
		return singletonConfidence
	}

	var sum float64
	var pairs int
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			sum += c.kernel.FullRecord(members[i], members[j])
			pairs++
		}
	}
	mean := sum / float64(pairs)

	bonus := sizeBonusPerMember * float64(len(members))
	if bonus > sizeBonusCap {
		bonus = sizeBonusCap
	}

	confidence := mean + bonus
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// classify applies the business/individual heuristic from §4.6.
func (c *Canonicalizer) classify(members []model.NormalizedRecord) model.EntityType {
	for _, m := range members {
		if c.hasWholeWordToken(m.PartyRecord.Name, c.businessSuffixTokens) {
			return model.EntityTypeBusiness
		}
	}

	singleToken := 0
	for _, m := range members {
		if len(wordSplit.Split(strings.ToLower(strings.TrimSpace(m.PartyRecord.Name)), -1)) == 1 && m.PartyRecord.Name != "" {
			singleToken++
		}
	}
	if singleToken*2 > len(members) {
		return model.EntityTypeBusiness
	}

	return model.EntityTypeIndividual
}

// isPEP applies the PEP heuristic from §4.6.
func (c *Canonicalizer) isPEP(members []model.NormalizedRecord) bool {
	for _, m := range members {
		if c.hasWholeWordToken(m.PartyRecord.Name, c.pepTokens) {
			return true
		}
	}
	return false
}

// hasWholeWordToken reports whether any whitespace/punctuation-
// delimited, lowercased token of name is in tokens.
func (c *Canonicalizer) hasWholeWordToken(name string, tokens map[string]struct{}) bool {
	if name == "" || len(tokens) == 0 {
		return false
	}
	for _, tok := range wordSplit.Split(strings.ToLower(name), -1) {
		if tok == "" {
			continue
		}
		if _, ok := tokens[tok]; ok {
			return true
		}
	}
	return false
}
