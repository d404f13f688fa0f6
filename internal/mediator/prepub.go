package mediator

import (
	"sort"
	"sync"

	"github.com/jlee2843/Peer-Review-2022/internal/entity"
)

// Prepub reconciles preprint revisions against the publications they
// became. Each published DOI owns a version-keyed map of articles; arrival
// order does not matter because the overwrite rule is deterministic for
// records with distinct dates. The mediator also tracks which published
// DOIs are still missing their version-1 preprint so a caller can schedule
// supplemental fetches.
//
// Prepub satisfies the article registry's notifier interface, which is how
// it learns about published articles as they are interned.
type Prepub struct {
	mu      sync.RWMutex
	groups  map[string]map[int]*entity.Article
	missing map[string]struct{}
}

// NewPrepub creates an empty version-reconciling mediator.
func NewPrepub() *Prepub {
	return &Prepub{
		groups:  make(map[string]map[int]*entity.Article),
		missing: make(map[string]struct{}),
	}
}

// Add records article under pubDOI in the slot for its version number.
// An occupied slot is only overwritten when the incoming article's version
// is numerically at most the stored one and its date is strictly earlier,
// so a duplicate or out-of-order response never clobbers a better record.
// After insertion the missing-initial-version set is recomputed: a key is
// a member iff it has at least one stored version and none is version 1.
func (m *Prepub) Add(pubDOI string, article *entity.Article) {
	m.mu.Lock()
	defer m.mu.Unlock()

	versions, ok := m.groups[pubDOI]
	if !ok {
		versions = make(map[int]*entity.Article)
		m.groups[pubDOI] = versions
	}

	stored, occupied := versions[article.Version]
	if !occupied || (article.Version <= stored.Version && article.Date.Before(stored.Date)) {
		versions[article.Version] = article
	}

	if _, hasInitial := versions[1]; hasInitial {
		delete(m.missing, pubDOI)
	} else {
		m.missing[pubDOI] = struct{}{}
	}
}

// Version returns the article stored for one version slot of pubDOI.
func (m *Prepub) Version(pubDOI string, version int) (*entity.Article, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.groups[pubDOI][version]
	return a, ok
}

// FirstStoredVersion returns the lowest version number currently known for
// pubDOI.
func (m *Prepub) FirstStoredVersion(pubDOI string) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lowestLocked(pubDOI)
}

// lowestLocked finds the minimum stored version. Callers hold the lock.
func (m *Prepub) lowestLocked(pubDOI string) (int, bool) {
	versions, ok := m.groups[pubDOI]
	if !ok || len(versions) == 0 {
		return 0, false
	}
	lowest := 0
	for v := range versions {
		if lowest == 0 || v < lowest {
			lowest = v
		}
	}
	return lowest, true
}

// CanonicalDOI returns the preprint DOI of the first stored version for
// pubDOI, the identifier to fetch when scheduling the missing version-1
// record.
func (m *Prepub) CanonicalDOI(pubDOI string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lowest, ok := m.lowestLocked(pubDOI)
	if !ok {
		return "", false
	}
	return m.groups[pubDOI][lowest].DOI, true
}

// MissingInitialVersions returns a sorted snapshot of the published DOIs
// that have at least one stored version but no version 1. Departure from
// the set is monotonic: once a version-1 record lands, the key never
// returns.
func (m *Prepub) MissingInitialVersions() []string {
	m.mu.RLock()
	dois := make([]string, 0, len(m.missing))
	for doi := range m.missing {
		dois = append(dois, doi)
	}
	m.mu.RUnlock()

	sort.Strings(dois)
	return dois
}

// Len returns the number of published DOIs tracked.
func (m *Prepub) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.groups)
}
