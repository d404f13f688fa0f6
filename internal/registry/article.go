package registry

import (
	"sort"
	"sync"

	"github.com/jlee2843/Peer-Review-2022/internal/entity"
)

// PrepubNotifier receives every published article as it is registered,
// keyed by its published DOI. The version-reconciling mediator implements
// this; the interface keeps the registry free of mediator internals.
type PrepubNotifier interface {
	Add(pubDOI string, article *entity.Article)
}

// ArticleRegistry interns preprint revisions by DOI. Unlike the generic
// Registry it never discards a re-registration: each revision is appended
// into the DOI's version-ascending list, and Get answers with the earliest
// known revision. Registering a published article also records its pub DOI
// and notifies the prepub mediator.
type ArticleRegistry struct {
	mu        sync.RWMutex
	versions  map[string][]*entity.Article
	published map[string]struct{}
	notifier  PrepubNotifier
}

// NewArticles creates an empty article registry. The notifier may be nil
// when publication reconciliation is not wanted (tests, partial harvests).
func NewArticles(notifier PrepubNotifier) *ArticleRegistry {
	return &ArticleRegistry{
		versions:  make(map[string][]*entity.Article),
		published: make(map[string]struct{}),
		notifier:  notifier,
	}
}

// Add registers one article revision. The revision is appended into its
// DOI's version-ordered list; among equal version numbers the earlier
// registration stays first, so Get is stable under duplicate pages.
// The mediator is notified outside the registry lock.
func (r *ArticleRegistry) Add(a *entity.Article) (*entity.Article, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	list := r.versions[a.DOI]
	at := sort.Search(len(list), func(i int) bool { return list[i].Version > a.Version })
	list = append(list, nil)
	copy(list[at+1:], list[at:])
	list[at] = a
	r.versions[a.DOI] = list

	published := a.Published()
	if published {
		r.published[a.PubDOI] = struct{}{}
	}
	r.mu.Unlock()

	if published && r.notifier != nil {
		r.notifier.Add(a.PubDOI, a)
	}
	return a, nil
}

// Get returns the earliest known revision for a DOI: version 1 once it has
// been registered, otherwise the lowest version seen so far.
func (r *ArticleRegistry) Get(doi string) (*entity.Article, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.versions[doi]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

// Versions returns a copy of all known revisions for a DOI, version
// ascending.
func (r *ArticleRegistry) Versions(doi string) []*entity.Article {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.versions[doi]
	out := make([]*entity.Article, len(list))
	copy(out, list)
	return out
}

// All returns every registered revision across all DOIs, grouped by DOI
// in sorted order and version ascending within each DOI.
func (r *ArticleRegistry) All() []*entity.Article {
	r.mu.RLock()
	dois := make([]string, 0, len(r.versions))
	total := 0
	for doi, list := range r.versions {
		dois = append(dois, doi)
		total += len(list)
	}
	sort.Strings(dois)

	out := make([]*entity.Article, 0, total)
	for _, doi := range dois {
		out = append(out, r.versions[doi]...)
	}
	r.mu.RUnlock()
	return out
}

// PublishedDOIs returns a sorted snapshot of every published DOI seen.
func (r *ArticleRegistry) PublishedDOIs() []string {
	r.mu.RLock()
	dois := make([]string, 0, len(r.published))
	for doi := range r.published {
		dois = append(dois, doi)
	}
	r.mu.RUnlock()

	sort.Strings(dois)
	return dois
}

// Len returns the number of distinct DOIs registered.
func (r *ArticleRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.versions)
}
