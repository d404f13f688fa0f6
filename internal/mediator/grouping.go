// Package mediator maintains grouping indexes over the shared entity pool:
// plain sorted groupings (institution/department/category to publications,
// link type to articles) and the version-reconciling index that pairs
// published DOIs with their preprint revisions.
package mediator

import (
	"sort"
	"sync"

	"github.com/jlee2843/Peer-Review-2022/internal/entity"
)

// LinkType is a plain-string grouping key (e.g. a publication link kind).
type LinkType string

// Key returns the link type itself.
func (l LinkType) Key() string { return string(l) }

// group is one key's membership, sorted and deduplicated by member key.
type group struct {
	key     entity.Keyed
	members []entity.Keyed
}

// Grouping maps a key entity to the sorted set of entities associated with
// it. Insertion is if-absent: adding a member twice is a no-op. It holds
// references into the registry's object pool, never copies.
type Grouping struct {
	mu     sync.RWMutex
	groups map[string]*group
}

// NewGrouping creates an empty grouping mediator.
func NewGrouping() *Grouping {
	return &Grouping{groups: make(map[string]*group)}
}

// Add associates member with key, keeping the membership sorted by member
// key and free of duplicates.
func (g *Grouping) Add(key, member entity.Keyed) {
	g.mu.Lock()
	defer g.mu.Unlock()

	grp, ok := g.groups[key.Key()]
	if !ok {
		grp = &group{key: key}
		g.groups[key.Key()] = grp
	}

	at := sort.Search(len(grp.members), func(i int) bool {
		return grp.members[i].Key() >= member.Key()
	})
	if at < len(grp.members) && grp.members[at].Key() == member.Key() {
		return
	}
	grp.members = append(grp.members, nil)
	copy(grp.members[at+1:], grp.members[at:])
	grp.members[at] = member
}

// Get returns a copy of the members associated with key, sorted by key.
func (g *Grouping) Get(key entity.Keyed) []entity.Keyed {
	g.mu.RLock()
	defer g.mu.RUnlock()

	grp, ok := g.groups[key.Key()]
	if !ok {
		return nil
	}
	out := make([]entity.Keyed, len(grp.members))
	copy(out, grp.members)
	return out
}

// Pair is one grouping entry: the key entity and its members.
type Pair struct {
	Key     entity.Keyed
	Members []entity.Keyed
}

// Pairs returns a snapshot of the whole grouping, sorted by key, for
// read-heavy consumers like the graph export.
func (g *Grouping) Pairs() []Pair {
	g.mu.RLock()
	pairs := make([]Pair, 0, len(g.groups))
	for _, grp := range g.groups {
		members := make([]entity.Keyed, len(grp.members))
		copy(members, grp.members)
		pairs = append(pairs, Pair{Key: grp.key, Members: members})
	}
	g.mu.RUnlock()

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key.Key() < pairs[j].Key.Key() })
	return pairs
}

// Len returns the number of group keys.
func (g *Grouping) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.groups)
}
