// Package normalize implements the per-record field cleaning the spec
// calls the Normalizer: pure, locale-independent, ASCII-folding only.
// It is grounded on the teacher's standardization.Engine, trimmed down
// to exactly the spec's rules — the teacher's stemming/phonetic
// machinery is not carried over, since mutating the normalized name
// that way would break the idempotence invariant normalize.Normalize
// must uphold. No other package of this module stems or drops stop
// words either.
package normalize

import (
	"regexp"
	"strings"

	"github.com/aegisshield/entity-resolution/internal/model"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	nonAlphanumSpace = regexp.MustCompile(`[^a-z0-9\s]`)
	nonDigit       = regexp.MustCompile(`[^0-9]`)
)

// Normalizer produces a NormalizedRecord from a PartyRecord.
type Normalizer struct{}

// New creates a Normalizer. It holds no state: normalization is pure.
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize cleans every field of rec. index is the record's position
// in the input sequence, carried onto the result as the tie-break used
// throughout the rest of the pipeline.
func (n *Normalizer) Normalize(rec model.PartyRecord, index int) model.NormalizedRecord {
	return model.NormalizedRecord{
		PartyRecord: rec,
		Index:       index,
		Name:        NormalizeName(rec.Name),
		Email:       NormalizeEmail(rec.Email),
		Phone:       NormalizePhone(rec.Phone),
		Address:     NormalizeAddress(rec.Address),
	}
}

// NormalizeAll normalizes every record in recs, preserving order.
func (n *Normalizer) NormalizeAll(recs []model.PartyRecord) []model.NormalizedRecord {
	out := make([]model.NormalizedRecord, len(recs))
	for i, rec := range recs {
		out[i] = n.Normalize(rec, i)
	}
	return out
}

// NormalizeName strips a name to alphanumerics and whitespace,
// collapses whitespace runs, trims, and lowercases. Unicode characters
// outside the alphanumeric class are dropped, not transliterated —
// this is intentional per §4.1: aggressive normalization maximizes
// block hit rate on noisy data.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}
	lowered := strings.ToLower(name)
	stripped := nonAlphanumSpace.ReplaceAllString(lowered, "")
	collapsed := whitespaceRun.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(collapsed)
}

// NormalizeEmail trims and lowercases. No validation is performed.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SplitEmail splits a normalized email into (local, domain) when an
// "@" is present, for use only by the email similarity function.
func SplitEmail(normalizedEmail string) (local, domain string, ok bool) {
	i := strings.IndexByte(normalizedEmail, '@')
	if i < 0 {
		return "", "", false
	}
	return normalizedEmail[:i], normalizedEmail[i+1:], true
}

// NormalizePhone removes every non-digit code point.
func NormalizePhone(phone string) string {
	return nonDigit.ReplaceAllString(phone, "")
}

// NormalizeAddress collapses whitespace, trims, and lowercases.
func NormalizeAddress(address string) string {
	if address == "" {
		return ""
	}
	lowered := strings.ToLower(address)
	collapsed := whitespaceRun.ReplaceAllString(lowered, " ")
	return strings.TrimSpace(collapsed)
}
