package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aegisshield/entity-resolution/internal/model"
)

func TestNormalizeName(t *testing.T) {
	t.Run("lowercases and strips punctuation", func(t *testing.T) {
		assert.Equal(t, "john a smith", NormalizeName("John A. Smith"))
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		assert.Equal(t, "mary johnson", NormalizeName("  Mary    Johnson  "))
	})

	t.Run("empty stays empty", func(t *testing.T) {
		assert.Equal(t, "", NormalizeName(""))
	})

	t.Run("idempotent", func(t *testing.T) {
		once := NormalizeName("Acme Corp, Inc.")
		twice := NormalizeName(once)
		assert.Equal(t, once, twice)
	})
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "js@x.com", NormalizeEmail(" JS@X.COM "))
	assert.Equal(t, NormalizeEmail("a@b.com"), NormalizeEmail(NormalizeEmail("a@b.com")))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "14155550100", NormalizePhone("+1 (415) 555-0100"))
	assert.Equal(t, "14155550100", NormalizePhone("14155550100"))
	assert.Equal(t, NormalizePhone("555-1234"), NormalizePhone(NormalizePhone("555-1234")))
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "123 main st", NormalizeAddress("123   Main St"))
}

func TestSplitEmail(t *testing.T) {
	local, domain, ok := SplitEmail("js@x.com")
	assert.True(t, ok)
	assert.Equal(t, "js", local)
	assert.Equal(t, "x.com", domain)

	_, _, ok = SplitEmail("not-an-email")
	assert.False(t, ok)
}

func TestNormalizer_NormalizeAll(t *testing.T) {
	n := New()
	recs := []model.PartyRecord{
		{ID: "r1", Name: "John Smith", Email: "JS@X.COM"},
		{ID: "r2", Name: "", Email: ""},
	}
	out := n.NormalizeAll(recs)

	assert.Len(t, out, 2)
	assert.Equal(t, 0, out[0].Index)
	assert.Equal(t, 1, out[1].Index)
	assert.Equal(t, "john smith", out[0].Name)
	assert.Equal(t, "js@x.com", out[0].Email)
	assert.Equal(t, "", out[1].Name)
}
