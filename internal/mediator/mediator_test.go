package mediator

import (
	"sync"
	"testing"
	"time"

	"github.com/jlee2843/Peer-Review-2022/internal/entity"
)

func pub(pubDOI, title string) *entity.Publication {
	return &entity.Publication{
		Journal: &entity.Journal{Title: "eLife"},
		Article: &entity.Article{DOI: "10.1101/" + pubDOI, Title: title, Version: 1, PubDOI: pubDOI},
		Name:    title,
		PubDOI:  pubDOI,
	}
}

func TestGroupingAddIfAbsent(t *testing.T) {
	g := NewGrouping()
	inst := &entity.Institution{Name: "FRED HUTCH"}

	p := pub("10.1093/001", "first")
	g.Add(inst, p)
	g.Add(inst, p)
	g.Add(inst, pub("10.1093/000", "zeroth"))

	members := g.Get(inst)
	if len(members) != 2 {
		t.Fatalf("expected 2 members after duplicate add, got %d", len(members))
	}
	if members[0].Key() != "10.1093/000" || members[1].Key() != "10.1093/001" {
		t.Errorf("members not sorted by key: %v, %v", members[0].Key(), members[1].Key())
	}
}

func TestGroupingStringKey(t *testing.T) {
	g := NewGrouping()
	a := &entity.Article{DOI: "10.1101/001", Version: 1}
	g.Add(LinkType("supersedes"), a)

	members := g.Get(LinkType("supersedes"))
	if len(members) != 1 || members[0] != entity.Keyed(a) {
		t.Errorf("link-type grouping should hold the article reference, got %v", members)
	}
	if g.Get(LinkType("unrelated")) != nil {
		t.Error("unknown key should have no members")
	}
}

func TestGroupingPairs(t *testing.T) {
	g := NewGrouping()
	g.Add(&entity.Category{Name: "Genomics"}, pub("10.1093/002", "b"))
	g.Add(&entity.Category{Name: "Ecology"}, pub("10.1093/001", "a"))

	pairs := g.Pairs()
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].Key.Key() != "Ecology" || pairs[1].Key.Key() != "Genomics" {
		t.Errorf("pairs not sorted by key: %s, %s", pairs[0].Key.Key(), pairs[1].Key.Key())
	}
}

func revision(doi string, version, day int) *entity.Article {
	return &entity.Article{
		DOI:     doi,
		Version: version,
		Date:    time.Date(2021, 3, day, 0, 0, 0, 0, time.UTC),
		PubDOI:  "10.1093/gbe/evac012",
	}
}

func TestPrepubReconcileOrderIndependent(t *testing.T) {
	const pubDOI = "10.1093/gbe/evac012"
	a := revision("10.1101/001", 2, 1) // earlier date
	b := revision("10.1101/001", 2, 9) // later date

	for name, order := range map[string][2]*entity.Article{
		"earlier first": {a, b},
		"later first":   {b, a},
	} {
		m := NewPrepub()
		m.Add(pubDOI, order[0])
		m.Add(pubDOI, order[1])

		got, ok := m.Version(pubDOI, 2)
		if !ok {
			t.Fatalf("%s: version 2 not stored", name)
		}
		if got != a {
			t.Errorf("%s: stored article has date %v, want the earlier record", name, got.Date)
		}
	}
}

func TestPrepubEqualDatesKeepFirst(t *testing.T) {
	const pubDOI = "10.1093/gbe/evac012"
	a := revision("10.1101/001", 1, 5)
	b := revision("10.1101/001", 1, 5)

	m := NewPrepub()
	m.Add(pubDOI, a)
	m.Add(pubDOI, b)

	got, _ := m.Version(pubDOI, 1)
	if got != a {
		t.Error("equal dates must not overwrite the stored record")
	}
}

func TestPrepubMissingInitialVersions(t *testing.T) {
	m := NewPrepub()

	m.Add("10.1093/b", revision("10.1101/b", 3, 1))
	m.Add("10.1093/a", revision("10.1101/a", 2, 1))
	m.Add("10.1093/c", revision("10.1101/c", 1, 1))

	missing := m.MissingInitialVersions()
	if len(missing) != 2 || missing[0] != "10.1093/a" || missing[1] != "10.1093/b" {
		t.Fatalf("MissingInitialVersions = %v, want sorted [10.1093/a 10.1093/b]", missing)
	}

	// Version 1 arriving removes the key permanently.
	m.Add("10.1093/a", revision("10.1101/a", 1, 2))
	missing = m.MissingInitialVersions()
	if len(missing) != 1 || missing[0] != "10.1093/b" {
		t.Fatalf("after v1 arrival, MissingInitialVersions = %v", missing)
	}

	// Later higher versions never re-add a resolved key.
	m.Add("10.1093/a", revision("10.1101/a", 4, 3))
	for _, doi := range m.MissingInitialVersions() {
		if doi == "10.1093/a" {
			t.Error("resolved key must never re-enter the missing set")
		}
	}
}

func TestPrepubFirstStoredVersionAndCanonicalDOI(t *testing.T) {
	m := NewPrepub()
	const pubDOI = "10.1093/gbe/evac012"

	if _, ok := m.FirstStoredVersion(pubDOI); ok {
		t.Error("unknown key should report no stored version")
	}

	m.Add(pubDOI, revision("10.1101/xyz", 3, 1))
	m.Add(pubDOI, revision("10.1101/xyz", 5, 2))

	v, ok := m.FirstStoredVersion(pubDOI)
	if !ok || v != 3 {
		t.Errorf("FirstStoredVersion = %d, %v; want 3, true", v, ok)
	}

	doi, ok := m.CanonicalDOI(pubDOI)
	if !ok || doi != "10.1101/xyz" {
		t.Errorf("CanonicalDOI = %q, %v", doi, ok)
	}
}

func TestPrepubConcurrentAdds(t *testing.T) {
	m := NewPrepub()
	const pubDOI = "10.1093/gbe/evac012"

	var wg sync.WaitGroup
	for v := 1; v <= 8; v++ {
		wg.Add(1)
		go func(version int) {
			defer wg.Done()
			m.Add(pubDOI, revision("10.1101/xyz", version, version))
		}(v)
	}
	wg.Wait()

	if v, _ := m.FirstStoredVersion(pubDOI); v != 1 {
		t.Errorf("FirstStoredVersion = %d, want 1", v)
	}
	if missing := m.MissingInitialVersions(); len(missing) != 0 {
		t.Errorf("missing set should be empty, got %v", missing)
	}
}
