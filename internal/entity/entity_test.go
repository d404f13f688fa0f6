package entity

import (
	"testing"
	"time"
)

func TestArticlePublished(t *testing.T) {
	cases := []struct {
		pubDOI string
		want   bool
	}{
		{"10.1093/gbe/evac012", true},
		{"NA", false},
		{"na", false},
		{" NA ", false},
		{"", false},
	}

	for _, tc := range cases {
		a := &Article{DOI: "10.1101/2021.01.01.425001", Version: 1, PubDOI: tc.pubDOI}
		if got := a.Published(); got != tc.want {
			t.Errorf("Published() with pub DOI %q = %v, want %v", tc.pubDOI, got, tc.want)
		}
	}
}

func TestArticleValidate(t *testing.T) {
	a := &Article{DOI: "10.1101/12345", Version: 1}
	if err := a.Validate(); err != nil {
		t.Errorf("valid article: %v", err)
	}

	a = &Article{DOI: "", Version: 1}
	if err := a.Validate(); err != ErrEmptyDOI {
		t.Errorf("empty DOI: got %v, want ErrEmptyDOI", err)
	}

	a = &Article{DOI: "10.1101/12345", Version: 0}
	if err := a.Validate(); err != ErrBadVersion {
		t.Errorf("zero version: got %v, want ErrBadVersion", err)
	}
}

func TestNewPublication(t *testing.T) {
	journal := &Journal{Title: "Genome Biology and Evolution"}
	article := &Article{
		DOI:     "10.1101/2021.01.01.425001",
		Title:   "A test preprint",
		Version: 1,
		Date:    time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		PubDOI:  "10.1093/gbe/evac012",
	}

	pub, err := NewPublication(journal, article)
	if err != nil {
		t.Fatalf("NewPublication: %v", err)
	}
	if pub.Key() != "10.1093/gbe/evac012" {
		t.Errorf("Key() = %q, want pub DOI", pub.Key())
	}
	if pub.Name != "A test preprint\n10.1093/gbe/evac012" {
		t.Errorf("Name = %q", pub.Name)
	}

	unpublished := &Article{DOI: "10.1101/2021.02.02.425002", Version: 1, PubDOI: PubDOINone}
	if _, err := NewPublication(journal, unpublished); err != ErrNotPublished {
		t.Errorf("unpublished article: got %v, want ErrNotPublished", err)
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		v    any
		want Kind
	}{
		{&Article{}, KindArticle},
		{&Journal{}, KindJournal},
		{&Institution{}, KindInstitution},
		{&Department{}, KindDepartment},
		{&Category{}, KindCategory},
		{&Author{}, KindAuthor},
		{&Publication{}, KindPublication},
		{"a plain string", KindUnknown},
	}

	for _, tc := range cases {
		if got := KindOf(tc.v); got != tc.want {
			t.Errorf("KindOf(%T) = %q, want %q", tc.v, got, tc.want)
		}
	}
}
