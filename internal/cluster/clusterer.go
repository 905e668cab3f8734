// Package cluster implements the in-block fuzzy matching and
// union-find merge the spec calls the Clusterer (§4.5). Grounded on
// the teacher's pantyukhov-distance-hashing union-find (see
// unionfind.go) for the merge structure, driven here by the
// similarity.Kernel instead of identifier-priority session keys.
package cluster

import (
	"sort"
	"sync"

	"github.com/aegisshield/entity-resolution/internal/blocking"
	"github.com/aegisshield/entity-resolution/internal/exactmatch"
	"github.com/aegisshield/entity-resolution/internal/model"
	"github.com/aegisshield/entity-resolution/internal/similarity"
)

// Clusterer merges records into clusters via exact-match groups and
// in-block fuzzy comparison. It holds no state between runs.
type Clusterer struct {
	kernel         *similarity.Kernel
	mergeThreshold float64
}

// New builds a Clusterer over kernel with the given merge threshold.
func New(kernel *similarity.Kernel, mergeThreshold float64) *Clusterer {
	return &Clusterer{kernel: kernel, mergeThreshold: mergeThreshold}
}

// Cluster pre-seeds a union-find with the exact-match groups, unions
// every in-block pair scoring >= the merge threshold, and reads out
// the resulting partition as clusters ordered by ascending minimum
// member index (§4.6 emission order).
//
// Per-block fuzzy comparison runs concurrently across blocks. A record
// can appear in several blocks, so workers may touch the same records;
// the shared union-find serializes the union/find calls themselves, and
// the resulting components do not depend on the order of those calls.
func (c *Clusterer) Cluster(records []model.NormalizedRecord, exact exactmatch.Result, blocks blocking.Blocks) []model.Cluster {
	uf := newUnionFind(len(records))

	for _, group := range exact.Groups {
		for _, m := range group.Members[1:] {
			uf.union(group.Members[0], m)
		}
	}

	keys := blocks.Keys()
	var wg sync.WaitGroup
	wg.Add(len(keys))
	for _, key := range keys {
		key := key
		go func() {
			defer wg.Done()
			c.clusterBlock(uf, records, blocks.Members(key))
		}()
	}
	wg.Wait()

	return readOutClusters(uf)
}

// clusterBlock unions every unordered pair within a single block that
// meets the merge threshold.
func (c *Clusterer) clusterBlock(uf *unionFind, records []model.NormalizedRecord, members []int) {
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			a, b := members[i], members[j]
			if uf.find(a) == uf.find(b) {
				continue
			}
			if c.kernel.Record(records[a], records[b]) >= c.mergeThreshold {
				uf.union(a, b)
			}
		}
	}
}

// readOutClusters converts the union-find's components into clusters
// ordered by ascending minimum member index, with members sorted by
// input index within each cluster.
func readOutClusters(uf *unionFind) []model.Cluster {
	comps := uf.components()

	clusters := make([]model.Cluster, 0, len(comps))
	for _, members := range comps {
		sort.Ints(members)
		clusters = append(clusters, model.Cluster{Members: members})
	}

	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].MinIndex() < clusters[j].MinIndex()
	})

	return clusters
}
