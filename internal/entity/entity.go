// Package entity defines the core domain types for the preprint harvest:
// articles, journals, publications, and the grouping keys (institution,
// department, category) used for cross-referencing.
package entity

import (
	"errors"
	"strings"
	"time"
)

// PubDOINone is the sentinel value bioRxiv uses for the published-DOI
// field of a preprint that has not (yet) been published.
const PubDOINone = "NA"

// Kind identifies one of the closed set of entity types.
type Kind string

// The complete set of entity kinds.
const (
	KindArticle     Kind = "article"
	KindJournal     Kind = "journal"
	KindInstitution Kind = "institution"
	KindDepartment  Kind = "department"
	KindCategory    Kind = "category"
	KindAuthor      Kind = "author"
	KindPublication Kind = "publication"
	KindUnknown     Kind = "unknown"
)

// Keyed is implemented by every entity with a stable string identity.
type Keyed interface {
	Key() string
}

// Validation errors.
var (
	ErrEmptyDOI     = errors.New("doi is required")
	ErrBadVersion   = errors.New("version must be a positive integer")
	ErrNotPublished = errors.New("article has no published DOI")
)

// Article is one revision of a bioRxiv preprint record. Multiple Article
// values may share a DOI; they are distinguished by Version.
type Article struct {
	DOI                  string    `json:"doi"`
	Title                string    `json:"title"`
	Authors              string    `json:"authors"` // semicolon-delimited raw string
	CorrespondingAuthors string    `json:"corresponding_authors"`
	Institution          string    `json:"institution"`
	Date                 time.Time `json:"date"`
	Version              int       `json:"version"`
	Type                 string    `json:"type"` // e.g. "new results", "contradictory results"
	Categories           []string  `json:"categories"`
	XML                  string    `json:"xml"`
	PubDOI               string    `json:"pub_doi"` // PubDOINone when unpublished

	// Populated later, when the detail lookups have run.
	AuthorsDetail     []*Author `json:"authors_detail,omitempty"`
	CorrAuthorsDetail *Author   `json:"corr_authors_detail,omitempty"`
	PublicationLink   string    `json:"publication_link,omitempty"`
}

// Key returns the article's DOI.
func (a *Article) Key() string { return a.DOI }

// Label returns the article's display name.
func (a *Article) Label() string { return a.Title }

// Published reports whether the article has a real published DOI.
func (a *Article) Published() bool {
	pd := strings.TrimSpace(a.PubDOI)
	return pd != "" && !strings.EqualFold(pd, PubDOINone)
}

// Validate checks the article's identity invariants.
func (a *Article) Validate() error {
	if strings.TrimSpace(a.DOI) == "" {
		return ErrEmptyDOI
	}
	if a.Version < 1 {
		return ErrBadVersion
	}
	return nil
}

// Journal is a peer-reviewed venue, identified by title.
type Journal struct {
	Title        string  `json:"title"`
	Prefix       string  `json:"prefix,omitempty"`
	ISSN         string  `json:"issn,omitempty"`
	ImpactFactor float64 `json:"impact_factor"`
}

// Key returns the journal's title.
func (j *Journal) Key() string { return j.Title }

// Label returns the journal's display name.
func (j *Journal) Label() string { return j.Title }

// Institution is a grouping key for cross-referencing publications.
type Institution struct {
	Name string `json:"name"`
}

func (i *Institution) Key() string   { return i.Name }
func (i *Institution) Label() string { return i.Name }

// Department is a grouping key for cross-referencing publications.
type Department struct {
	Name string `json:"name"`
}

func (d *Department) Key() string   { return d.Name }
func (d *Department) Label() string { return d.Name }

// Category is a bioRxiv subject area used as a grouping key.
type Category struct {
	Name string `json:"name"`
}

func (c *Category) Key() string   { return c.Name }
func (c *Category) Label() string { return c.Name }

// Author is an individual author, identified by name.
type Author struct {
	Name string `json:"name"`
}

func (a *Author) Key() string   { return a.Name }
func (a *Author) Label() string { return a.Name }

// Publication pairs a Journal with the Article it published. Its identity
// is the article's published DOI, so it only exists for published articles.
type Publication struct {
	Journal *Journal `json:"journal"`
	Article *Article `json:"article"`
	Name    string   `json:"name"`
	PubDOI  string   `json:"pub_doi"`
}

// NewPublication builds a Publication from a journal and a published
// article. It returns ErrNotPublished when the article's pub DOI is the
// "NA" sentinel.
func NewPublication(journal *Journal, article *Article) (*Publication, error) {
	if !article.Published() {
		return nil, ErrNotPublished
	}
	return &Publication{
		Journal: journal,
		Article: article,
		Name:    article.Title + "\n" + article.PubDOI,
		PubDOI:  article.PubDOI,
	}, nil
}

// Key returns the publication's published DOI.
func (p *Publication) Key() string { return p.PubDOI }

// Label returns the publication's display name.
func (p *Publication) Label() string { return p.Name }

// KindOf maps an entity to its Kind. The set of entity types is closed;
// anything else reports KindUnknown.
func KindOf(v any) Kind {
	switch v.(type) {
	case *Article:
		return KindArticle
	case *Journal:
		return KindJournal
	case *Institution:
		return KindInstitution
	case *Department:
		return KindDepartment
	case *Category:
		return KindCategory
	case *Author:
		return KindAuthor
	case *Publication:
		return KindPublication
	default:
		return KindUnknown
	}
}
