// Package exactmatch implements the first clustering pass: grouping
// records that share a strong identifier (email, then phone) before
// the more expensive fuzzy stage ever runs. Grounded on the teacher's
// resolver.findExactMatches, generalized from a single-record lookup
// against a database into a full-batch, two-pass bucketing.
package exactmatch

import "github.com/aegisshield/entity-resolution/internal/model"

// Group is one exact-match cluster: the indices of records that share
// a non-empty normalized email or phone, plus the anchor — the
// earliest-ordered member, used only as a canonical-field tie-break.
type Group struct {
	Members []int
	Anchor  int
}

// Result is the Indexer's output: the exact-match groups, and the
// indices of records placed into none of them.
type Result struct {
	Groups    []Group
	Unplaced  []int
}

// Index buckets records by normalized email, then normalized phone
// over whatever's left, per §4.3. Every bucket of size >= 2 becomes a
// group; singletons and records with only empty keys remain unplaced.
func Index(records []model.NormalizedRecord) Result {
	placed := make([]bool, len(records))
	var groups []Group

	groups = append(groups, bucketBy(records, placed, func(r model.NormalizedRecord) string {
		return r.Email
	})...)
	groups = append(groups, bucketBy(records, placed, func(r model.NormalizedRecord) string {
		return r.Phone
	})...)

	var unplaced []int
	for i, p := range placed {
		if !p {
			unplaced = append(unplaced, i)
		}
	}

	return Result{Groups: groups, Unplaced: unplaced}
}

// bucketBy groups the not-yet-placed records by key(record), skipping
// records with an empty key. Buckets of size >= 2 are emitted as
// groups and their members are marked placed; iteration follows input
// order so the anchor (first member) and group emission order are
// deterministic.
func bucketBy(records []model.NormalizedRecord, placed []bool, key func(model.NormalizedRecord) string) []Group {
	buckets := make(map[string][]int)
	var order []string

	for i, rec := range records {
		if placed[i] {
			continue
		}
		k := key(rec)
		if k == "" {
			continue
		}
		if _, seen := buckets[k]; !seen {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], i)
	}

	var groups []Group
	for _, k := range order {
		members := buckets[k]
		if len(members) < 2 {
			continue
		}
		for _, m := range members {
			placed[m] = true
		}
		groups = append(groups, Group{Members: members, Anchor: members[0]})
	}
	return groups
}
