// Package blocking implements the candidate-pair generator the spec
// calls the Blocker (§4.4): cheap per-record keys that admit a record
// to in-block fuzzy comparison. Grounded on the teacher's
// matching.Engine (generateBlockingKey, nameIndex), with the radix
// tree kept as the backing index.
package blocking

import (
	"sort"
	"strings"

	radix "github.com/armon/go-radix"

	"github.com/aegisshield/entity-resolution/internal/model"
)

const (
	namePrefixLen  = 5
	wordPrefixLen  = 4
	emailPrefixLen = 6
	phonePrefixLen = 6
)

// Blocker generates blocking keys and groups records by them.
type Blocker struct {
	// BlockSizeCap is the configurable limit above which a block is
	// dropped entirely (§4.4). Records that would only have appeared
	// in dropped blocks remain singletons.
	BlockSizeCap int
}

// New builds a Blocker with the given block-size cap.
func New(blockSizeCap int) *Blocker {
	return &Blocker{BlockSizeCap: blockSizeCap}
}

// Blocks maps a blocking key to the record indices sharing it.
type Blocks struct {
	tree    *radix.Tree
	Dropped []string // keys dropped for exceeding BlockSizeCap, for logging
}

// Keys returns every surviving blocking key, in sorted order for
// deterministic iteration downstream.
func (b Blocks) Keys() []string {
	keys := make([]string, 0, b.tree.Len())
	b.tree.Walk(func(k string, _ interface{}) bool {
		keys = append(keys, k)
		return false
	})
	sort.Strings(keys)
	return keys
}

// Members returns the record indices sharing key, in input order.
func (b Blocks) Members(key string) []int {
	v, ok := b.tree.Get(key)
	if !ok {
		return nil
	}
	return v.([]int)
}

// Build generates blocking keys for every record in indices (typically
// the exact-match residual) and groups them into blocks, dropping any
// block whose size exceeds BlockSizeCap.
func (b *Blocker) Build(records []model.NormalizedRecord, indices []int) Blocks {
	raw := radix.New()

	for _, i := range indices {
		for _, key := range keysFor(records[i]) {
			if existing, ok := raw.Get(key); ok {
				raw.Insert(key, append(existing.([]int), i))
			} else {
				raw.Insert(key, []int{i})
			}
		}
	}

	final := radix.New()
	var dropped []string
	raw.Walk(func(key string, v interface{}) bool {
		members := v.([]int)
		if len(members) > b.BlockSizeCap {
			dropped = append(dropped, key)
			return false
		}
		final.Insert(key, members)
		return false
	})

	return Blocks{tree: final, Dropped: dropped}
}

// keysFor returns the zero or more blocking keys a record contributes.
func keysFor(rec model.NormalizedRecord) []string {
	var keys []string

	if len(rec.Name) >= namePrefixLen {
		keys = append(keys, "name:"+rec.Name[:namePrefixLen])
	}

	if wordKey, ok := firstTokenKey(rec.Name); ok {
		keys = append(keys, wordKey)
	}

	if i := strings.IndexByte(rec.Email, '@'); i >= 0 {
		domain := rec.Email[i+1:]
		if len(domain) >= 3 {
			n := emailPrefixLen
			if len(domain) < n {
				n = len(domain)
			}
			keys = append(keys, "email:"+domain[:n])
		}
	}

	if len(rec.Phone) >= 6 {
		n := phonePrefixLen
		if len(rec.Phone) < n {
			n = len(rec.Phone)
		}
		keys = append(keys, "phone:"+rec.Phone[:n])
	}

	return keys
}

// firstTokenKey returns the first 4 characters of name's first
// whitespace-delimited token as a "word:" key, when that token is long
// enough, per §4.4.
func firstTokenKey(name string) (string, bool) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", false
	}
	token := fields[0]
	if len(token) < wordPrefixLen {
		return "", false
	}
	return "word:" + token[:wordPrefixLen], true
}
