package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aegisshield/entity-resolution/internal/config"
	"github.com/aegisshield/entity-resolution/internal/model"
	"github.com/aegisshield/entity-resolution/internal/similarity"
)

func newTestCanonicalizer() *Canonicalizer {
	cfg := config.Default()
	return New(similarity.New(cfg), cfg)
}

func TestCanonicalize_FieldSelection(t *testing.T) {
	c := newTestCanonicalizer()

	records := []model.NormalizedRecord{
		{PartyRecord: model.PartyRecord{ID: "r1", Name: "John Smith", Email: "js@x.com", Address: "123 Main St", Country: "US", Source: "ledger"}},
		{PartyRecord: model.PartyRecord{ID: "r2", Name: "J. Smith", Email: "", Address: "123 Main Street", Country: "US", Source: "registry"}},
	}
	cl := model.Cluster{Members: []int{0, 1}}

	entity := c.Canonicalize(records, cl, 0)

	assert.Equal(t, "John Smith", entity.Name)
	assert.Equal(t, "js@x.com", entity.Email)
	assert.Equal(t, "123 Main Street", entity.Address)
	assert.Equal(t, "US", entity.Country)
	assert.ElementsMatch(t, []string{"ledger", "registry"}, entity.Sources)
	assert.Equal(t, []string{"r1", "r2"}, entity.Members)
}

func TestCanonicalize_Confidence(t *testing.T) {
	c := newTestCanonicalizer()

	t.Run("singleton is 0.7", func(t *testing.T) {
		records := []model.NormalizedRecord{{PartyRecord: model.PartyRecord{ID: "r1"}, Name: "john smith"}}
		entity := c.Canonicalize(records, model.Cluster{Members: []int{0}}, 0)
		assert.Equal(t, 0.7, entity.Confidence)
	})

	t.Run("bounded to [0, 1]", func(t *testing.T) {
		records := []model.NormalizedRecord{
			{PartyRecord: model.PartyRecord{ID: "r1"}, Name: "john smith"},
			{PartyRecord: model.PartyRecord{ID: "r2"}, Name: "john smith"},
			{PartyRecord: model.PartyRecord{ID: "r3"}, Name: "john smith"},
		}
		entity := c.Canonicalize(records, model.Cluster{Members: []int{0, 1, 2}}, 0)
		assert.GreaterOrEqual(t, entity.Confidence, 0.0)
		assert.LessOrEqual(t, entity.Confidence, 1.0)
	})

	t.Run("credits a shared address between members only transitively linked", func(t *testing.T) {
		// A and C never cluster directly on name (their direct name
		// score is well under the early-exit floor), but both share B's
		// address and are only in this cluster because B bridges them.
		// confidence must still reflect that shared address rather than
		// collapsing the A-C pair to a near-zero name-only score.
		records := []model.NormalizedRecord{
			{PartyRecord: model.PartyRecord{ID: "a"}, Name: "aaaaaaaaaa", Address: "123 main st springfield"},
			{PartyRecord: model.PartyRecord{ID: "b"}, Name: "mmmmmmmmmm", Address: "123 main st springfield"},
			{PartyRecord: model.PartyRecord{ID: "c"}, Name: "zzzzzzzzzz", Address: "123 main st springfield"},
		}
		cl := model.Cluster{Members: []int{0, 1, 2}}
		entity := c.Canonicalize(records, cl, 0)

		// Reconstruct what confidence would have been had it reused
		// Kernel.Record's early-termination shortcut for every pair (the
		// bug): each pair's dissimilar name truncates its score to
		// near-zero, discarding the shared address entirely.
		a, b, cc := records[0], records[1], records[2]
		brokenMean := (c.kernel.Record(a, b) + c.kernel.Record(b, cc) + c.kernel.Record(a, cc)) / 3
		bonus := sizeBonusPerMember * 3.0
		brokenConfidence := brokenMean + bonus

		assert.Greater(t, entity.Confidence, brokenConfidence,
			"confidence must credit the shared address, not collapse to the early-exit name-only score")
	})
}

func TestCanonicalize_EntityType(t *testing.T) {
	c := newTestCanonicalizer()

	t.Run("business suffix token classifies as business", func(t *testing.T) {
		records := []model.NormalizedRecord{{PartyRecord: model.PartyRecord{ID: "r1", Name: "Acme Corp Inc"}}}
		entity := c.Canonicalize(records, model.Cluster{Members: []int{0}}, 0)
		assert.Equal(t, model.EntityTypeBusiness, entity.Type)
	})

	t.Run("multi-token personal name classifies as individual", func(t *testing.T) {
		records := []model.NormalizedRecord{{PartyRecord: model.PartyRecord{ID: "r1", Name: "John Smith"}}}
		entity := c.Canonicalize(records, model.Cluster{Members: []int{0}}, 0)
		assert.Equal(t, model.EntityTypeIndividual, entity.Type)
	})
}

func TestCanonicalize_PEP(t *testing.T) {
	c := newTestCanonicalizer()
	records := []model.NormalizedRecord{
		{PartyRecord: model.PartyRecord{ID: "r1", Name: "Senator Jane Roe"}},
		{PartyRecord: model.PartyRecord{ID: "r2", Name: "Jane Roe", Email: "jr@x.com"}},
	}
	entity := c.Canonicalize(records, model.Cluster{Members: []int{0, 1}}, 0)
	assert.True(t, entity.PEP)
}

func TestCanonicalize_IDAssignment(t *testing.T) {
	c := newTestCanonicalizer()
	records := []model.NormalizedRecord{{PartyRecord: model.PartyRecord{ID: "r1"}}}

	first := c.Canonicalize(records, model.Cluster{Members: []int{0}}, 0)
	second := c.Canonicalize(records, model.Cluster{Members: []int{0}}, 1)

	assert.Equal(t, "000001", first.ID)
	assert.Equal(t, "000002", second.ID)
}
