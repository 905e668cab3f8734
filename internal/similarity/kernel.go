// Package similarity implements the four field-similarity functions
// and the record-level combiner the spec calls the Similarity Kernel
// (§4.2). It is grounded on the teacher's matching.Engine
// (calculateNameSimilarity, calculateEmailSimilarity, ...,
// calculateWeightedScore), generalized to the spec's exact formulas.
package similarity

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aegisshield/entity-resolution/internal/config"
	"github.com/aegisshield/entity-resolution/internal/model"
)

// nameFloorForEarlyExit is the performance-only early-termination
// point from §4.2: below this name score no pair can reach the
// default merge threshold (0.40*0.25 + 0.60 = 0.70 with perfect scores
// on every other field), so the combiner may skip the remaining field
// comparisons.
const nameFloorForEarlyExit = 0.25

// Kernel computes field- and record-level similarity scores.
type Kernel struct {
	nameWeights    config.RatioWeights
	addressWeights config.RatioWeights
	fieldWeights   config.FieldWeights

	cache *lru.Cache[string, float64]
}

// New builds a Kernel from the resolved configuration. A
// cfg.SimilarityCacheSize <= 0 disables the pairwise-score cache.
func New(cfg config.Config) *Kernel {
	k := &Kernel{
		nameWeights:    cfg.NameWeights,
		addressWeights: cfg.AddressWeights,
		fieldWeights:   cfg.FieldWeights,
	}
	if cfg.SimilarityCacheSize > 0 {
		cache, err := lru.New[string, float64](cfg.SimilarityCacheSize)
		if err == nil {
			k.cache = cache
		}
	}
	return k
}

// NameSimilarity mixes token_sort_ratio and partial_ratio per the
// configured weights. Empty on either side is 0.
func (k *Kernel) NameSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}
	return k.mix(k.nameWeights.TokenSort, tokenSortRatio(a, b), k.nameWeights.Partial, partialRatio(a, b), 0, 0)
}

// AddressSimilarity mixes token_set_ratio and partial_ratio per the
// configured weights. Empty on either side is 0.
func (k *Kernel) AddressSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}
	return k.mix(0, 0, k.addressWeights.Partial, partialRatio(a, b), k.addressWeights.TokenSet, tokenSetRatio(a, b))
}

// mix normalizes a weighted sum of up to three components to [0, 1].
// Components with zero weight are excluded from the denominator.
func (k *Kernel) mix(w1, s1, w2, s2, w3, s3 float64) float64 {
	total := w1 + w2 + w3
	if total <= 0 {
		return 0.0
	}
	return (w1*s1 + w2*s2 + w3*s3) / total
}

// EmailSimilarity: equal after normalization is 1. Local@domain pairs
// weight the local-part ratio at 0.3 and exact domain match at 0.7.
// Anything else falls back to a character ratio on the full strings.
func EmailSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}

	localA, domainA, okA := splitEmail(a)
	localB, domainB, okB := splitEmail(b)
	if okA && okB {
		domainScore := 0.0
		if domainA == domainB {
			domainScore = 1.0
		}
		return 0.3*charRatio(localA, localB) + 0.7*domainScore
	}

	return charRatio(a, b)
}

func splitEmail(email string) (local, domain string, ok bool) {
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			return email[:i], email[i+1:], true
		}
	}
	return "", "", false
}

// PhoneSimilarity: equality after normalization is 1; if both have >=
// 10 digits and the last 10 digits match, 0.9; otherwise a character
// ratio on the digit strings.
func PhoneSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}
	if len(a) >= 10 && len(b) >= 10 && a[len(a)-10:] == b[len(b)-10:] {
		return 0.9
	}
	return charRatio(a, b)
}

// fieldScore is one field's (weight, score) contribution, counted
// only when both sides were non-empty.
type fieldScore struct {
	weight float64
	score  float64
	usable bool
}

// Record computes the weighted record-level similarity between two
// normalized records, restricted to fields comparable on both sides,
// per §4.2, applying the name-score early-termination shortcut that
// section describes as a performance optimization for the merge-
// threshold comparison. Returns 0 if no fields are comparable. Results
// are cached by the pair of record IDs, in either argument order, when
// a cache was configured.
//
// Record's truncated result is only valid as a threshold comparison
// (is this pair similar enough to merge), not as a continuous
// similarity value — a pair short-circuited here can still score
// higher once every field is considered. Callers that need the actual
// combined score (e.g. confidence) must use FullRecord instead.
func (k *Kernel) Record(a, b model.NormalizedRecord) float64 {
	key := ""
	if k.cache != nil {
		key = pairKey(a.ID, b.ID)
		if v, ok := k.cache.Get(key); ok {
			return v
		}
	}

	nameScore := k.nameFieldScore(a, b)

	// Early termination: under the default weights, no pair with a
	// name score below the floor can reach the merge threshold even
	// with perfect scores elsewhere. This only applies when name is
	// actually comparable and carries weight.
	if nameScore.usable && nameScore.weight > 0 && nameScore.score < nameFloorForEarlyExit {
		result := k.combine([]fieldScore{nameScore})
		if k.cache != nil {
			k.cache.Add(key, result)
		}
		return result
	}

	result := k.combine(k.remainingFieldScores(a, b, nameScore))
	if k.cache != nil {
		k.cache.Add(key, result)
	}
	return result
}

// FullRecord computes the same weighted record-level similarity as
// Record but always evaluates every field, never applying the
// early-termination shortcut. The Canonicalizer's confidence
// computation needs this: a cluster can validly contain a pair whose
// direct name similarity is low but who were merged transitively
// through a third record, and whose other fields (e.g. a shared
// address) should still count toward confidence. Cached separately
// from Record so the two code paths never observe each other's
// truncated values.
func (k *Kernel) FullRecord(a, b model.NormalizedRecord) float64 {
	key := ""
	if k.cache != nil {
		key = "full:" + pairKey(a.ID, b.ID)
		if v, ok := k.cache.Get(key); ok {
			return v
		}
	}

	nameScore := k.nameFieldScore(a, b)
	result := k.combine(k.remainingFieldScores(a, b, nameScore))
	if k.cache != nil {
		k.cache.Add(key, result)
	}
	return result
}

func (k *Kernel) nameFieldScore(a, b model.NormalizedRecord) fieldScore {
	nameScore := fieldScore{weight: k.fieldWeights.Name, usable: a.Name != "" && b.Name != ""}
	if nameScore.usable {
		nameScore.score = k.NameSimilarity(a.Name, b.Name)
	}
	return nameScore
}

// remainingFieldScores computes email, phone, and address scores and
// returns them alongside the already-computed nameScore, in the fixed
// order combine expects.
func (k *Kernel) remainingFieldScores(a, b model.NormalizedRecord, nameScore fieldScore) []fieldScore {
	emailScore := fieldScore{weight: k.fieldWeights.Email, usable: a.Email != "" && b.Email != ""}
	if emailScore.usable {
		emailScore.score = EmailSimilarity(a.Email, b.Email)
	}

	phoneScore := fieldScore{weight: k.fieldWeights.Phone, usable: a.Phone != "" && b.Phone != ""}
	if phoneScore.usable {
		phoneScore.score = PhoneSimilarity(a.Phone, b.Phone)
	}

	addressScore := fieldScore{weight: k.fieldWeights.Address, usable: a.Address != "" && b.Address != ""}
	if addressScore.usable {
		addressScore.score = k.AddressSimilarity(a.Address, b.Address)
	}

	return []fieldScore{nameScore, emailScore, phoneScore, addressScore}
}

func (k *Kernel) combine(fields []fieldScore) float64 {
	var sum, totalWeight float64
	for _, f := range fields {
		if !f.usable {
			continue
		}
		sum += f.score * f.weight
		totalWeight += f.weight
	}
	if totalWeight <= 0 {
		return 0.0
	}
	return sum / totalWeight
}

func pairKey(idA, idB string) string {
	if idA < idB {
		return fmt.Sprintf("%s|%s", idA, idB)
	}
	return fmt.Sprintf("%s|%s", idB, idA)
}
