package blocking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aegisshield/entity-resolution/internal/model"
)

func TestBlocker_Build(t *testing.T) {
	t.Run("shares a name block across near-duplicate names", func(t *testing.T) {
		recs := []model.NormalizedRecord{
			{Name: "mary johnson", Email: "", Phone: ""},
			{Name: "mary j johnson", Email: "", Phone: ""},
		}
		b := New(1000)
		blocks := b.Build(recs, []int{0, 1})

		found := false
		for _, key := range blocks.Keys() {
			members := blocks.Members(key)
			if len(members) == 2 {
				found = true
			}
		}
		assert.True(t, found, "expected at least one shared block for near-duplicate names")
	})

	t.Run("drops blocks exceeding the size cap", func(t *testing.T) {
		recs := make([]model.NormalizedRecord, 10)
		indices := make([]int, 10)
		for i := range recs {
			recs[i] = model.NormalizedRecord{Name: "alex"}
			indices[i] = i
		}
		b := New(5)
		blocks := b.Build(recs, indices)

		assert.NotEmpty(t, blocks.Dropped)
		for _, key := range blocks.Keys() {
			assert.LessOrEqual(t, len(blocks.Members(key)), 5)
		}
	})

	t.Run("empty fields contribute no keys", func(t *testing.T) {
		recs := []model.NormalizedRecord{{}}
		b := New(1000)
		blocks := b.Build(recs, []int{0})
		assert.Empty(t, blocks.Keys())
	})
}

func TestKeysFor(t *testing.T) {
	rec := model.NormalizedRecord{
		Name:  "mary johnson",
		Email: "js@example.com",
		Phone: "14155550100",
	}
	keys := keysFor(rec)
	assert.Contains(t, keys, "name:mary ")
	assert.Contains(t, keys, "word:mary")
	assert.Contains(t, keys, "email:exampl")
	assert.Contains(t, keys, "phone:141555")
}

func TestFirstTokenKey(t *testing.T) {
	t.Run("takes the literal first whitespace token, no stemming or stopword skip", func(t *testing.T) {
		key, ok := firstTokenKey("the acme company")
		assert.False(t, ok, "the first token \"the\" is shorter than the 4-char minimum")
		assert.Empty(t, key)
	})

	t.Run("keys on the first token even when it is a stop word long enough to qualify", func(t *testing.T) {
		key, ok := firstTokenKey("with acme company")
		assert.True(t, ok)
		assert.Equal(t, "word:with", key)
	})

	t.Run("does not stem the token", func(t *testing.T) {
		key, ok := firstTokenKey("running companies inc")
		assert.True(t, ok)
		assert.Equal(t, "word:runn", key)
	})
}
