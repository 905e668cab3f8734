package exactmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aegisshield/entity-resolution/internal/model"
)

func rec(id, email, phone string) model.NormalizedRecord {
	return model.NormalizedRecord{PartyRecord: model.PartyRecord{ID: id}, Email: email, Phone: phone}
}

func TestIndex(t *testing.T) {
	t.Run("groups by shared email", func(t *testing.T) {
		recs := []model.NormalizedRecord{
			rec("r1", "js@x.com", ""),
			rec("r2", "js@x.com", ""),
			rec("r3", "other@x.com", ""),
		}
		result := Index(recs)

		assert.Len(t, result.Groups, 1)
		assert.Equal(t, []int{0, 1}, result.Groups[0].Members)
		assert.Equal(t, []int{2}, result.Unplaced)
	})

	t.Run("falls back to phone once email is exhausted", func(t *testing.T) {
		recs := []model.NormalizedRecord{
			rec("r1", "", "14155550100"),
			rec("r2", "", "14155550100"),
		}
		result := Index(recs)

		assert.Len(t, result.Groups, 1)
		assert.Equal(t, []int{0, 1}, result.Groups[0].Members)
		assert.Empty(t, result.Unplaced)
	})

	t.Run("empty keys never group", func(t *testing.T) {
		recs := []model.NormalizedRecord{rec("r1", "", ""), rec("r2", "", "")}
		result := Index(recs)

		assert.Empty(t, result.Groups)
		assert.Equal(t, []int{0, 1}, result.Unplaced)
	})

	t.Run("a singleton key is not a group", func(t *testing.T) {
		recs := []model.NormalizedRecord{rec("r1", "js@x.com", "")}
		result := Index(recs)

		assert.Empty(t, result.Groups)
		assert.Equal(t, []int{0}, result.Unplaced)
	})
}
