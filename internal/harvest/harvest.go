// Package harvest wires the fetch planner, normalizer, registries, and
// mediators into the operations callers actually use: run a harvest,
// intern entities, and schedule supplemental fetches for missing preprint
// versions.
package harvest

import (
	"context"
	"fmt"
	"strings"

	"github.com/jlee2843/Peer-Review-2022/internal/biorxiv"
	"github.com/jlee2843/Peer-Review-2022/internal/entity"
	"github.com/jlee2843/Peer-Review-2022/internal/mediator"
	"github.com/jlee2843/Peer-Review-2022/internal/record"
	"github.com/jlee2843/Peer-Review-2022/internal/registry"
)

// Relationship labels used by the grouping mediators' graph export.
const (
	RelPublishedBy    = "published_by"
	RelAffiliatedWith = "affiliated_with"
	RelCategorizedAs  = "categorized_as"
	RelLinkedAs       = "linked_as"
)

// Harvester owns one run's registries and mediators. Registries hold the
// canonical instance of every interned entity; the mediators index
// references into the same pool. Each store has its own lock, so article
// interning never blocks institution interning.
type Harvester struct {
	Articles     *registry.ArticleRegistry
	Journals     *registry.Registry[*entity.Journal]
	Institutions *registry.Registry[*entity.Institution]
	Departments  *registry.Registry[*entity.Department]
	Categories   *registry.Registry[*entity.Category]
	Authors      *registry.Registry[*entity.Author]
	Publications *registry.Registry[*entity.Publication]

	Prepub          *mediator.Prepub
	InstitutionPubs *mediator.Grouping
	DepartmentPubs  *mediator.Grouping
	CategoryPubs    *mediator.Grouping
	ArticleLinks    *mediator.Grouping

	client *biorxiv.Client
}

// New creates a Harvester with fresh stores, wiring the prepub mediator
// into the article registry so published articles reconcile as they are
// interned.
func New(client *biorxiv.Client) *Harvester {
	prepub := mediator.NewPrepub()
	return &Harvester{
		Articles:     registry.NewArticles(prepub),
		Journals:     registry.New[*entity.Journal](),
		Institutions: registry.New[*entity.Institution](),
		Departments:  registry.New[*entity.Department](),
		Categories:   registry.New[*entity.Category](),
		Authors:      registry.New[*entity.Author](),
		Publications: registry.New[*entity.Publication](),

		Prepub:          prepub,
		InstitutionPubs: mediator.NewGrouping(),
		DepartmentPubs:  mediator.NewGrouping(),
		CategoryPubs:    mediator.NewGrouping(),
		ArticleLinks:    mediator.NewGrouping(),

		client: client,
	}
}

// CreateArticle builds an Article from a normalized row and interns it.
// Registering a published article also records its pub DOI and feeds the
// prepub mediator; those side effects live in the registry.
func (h *Harvester) CreateArticle(row record.Row) (*entity.Article, error) {
	doi, err := record.CheckDOI(row.DOI)
	if err != nil {
		return nil, err
	}

	article := &entity.Article{
		DOI:                  doi,
		Title:                row.Title,
		Authors:              row.Authors,
		CorrespondingAuthors: row.CorrespondingAuthors,
		Institution:          row.Institution,
		Date:                 row.Date,
		Version:              row.Version,
		Type:                 row.Type,
		Categories:           splitCategories(row.Category),
		XML:                  row.XML,
		PubDOI:               row.Published,
	}
	return h.Articles.Add(article)
}

// CreateJournal interns a journal by name.
func (h *Harvester) CreateJournal(name string) *entity.Journal {
	return h.Journals.CreateOrGet(name, func() *entity.Journal {
		return &entity.Journal{Title: name}
	})
}

// CreatePublication pairs a journal with a published article, interns the
// publication under the article's pub DOI, and cross-references it under
// the article's institution and categories.
func (h *Harvester) CreatePublication(journal *entity.Journal, article *entity.Article) (*entity.Publication, error) {
	pub, err := entity.NewPublication(journal, article)
	if err != nil {
		return nil, err
	}
	pub = h.Publications.CreateOrGet(pub.Key(), func() *entity.Publication { return pub })

	if article.Institution != "" {
		inst := h.Institutions.CreateOrGet(article.Institution, func() *entity.Institution {
			return &entity.Institution{Name: article.Institution}
		})
		h.InstitutionPubs.Add(inst, pub)
	}
	for _, name := range article.Categories {
		cat := h.Categories.CreateOrGet(name, func() *entity.Category {
			return &entity.Category{Name: name}
		})
		h.CategoryPubs.Add(cat, pub)
	}

	return pub, nil
}

// AssociateDepartment cross-references a publication under a department.
// Department information comes from detail lookups outside the details
// endpoint, so it is supplied by the caller.
func (h *Harvester) AssociateDepartment(name string, pub *entity.Publication) {
	dept := h.Departments.CreateOrGet(name, func() *entity.Department {
		return &entity.Department{Name: name}
	})
	h.DepartmentPubs.Add(dept, pub)
}

// AddArticleLink cross-references an article under a link type.
func (h *Harvester) AddArticleLink(linkType string, article *entity.Article) {
	h.ArticleLinks.Add(mediator.LinkType(linkType), article)
}

// MissingInitialVersionDOIs returns the sorted published DOIs whose
// version-1 preprint has not been harvested yet.
func (h *Harvester) MissingInitialVersionDOIs() []string {
	return h.Prepub.MissingInitialVersions()
}

// PlanSupplemental builds one details query per missing initial version,
// addressed by the preprint DOI of the earliest revision already known.
func (h *Harvester) PlanSupplemental(baseURL string) ([]*biorxiv.Query, error) {
	var queries []*biorxiv.Query
	for _, pubDOI := range h.MissingInitialVersionDOIs() {
		doi, ok := h.Prepub.CanonicalDOI(pubDOI)
		if !ok {
			continue
		}
		q, err := biorxiv.NewQuery(fmt.Sprintf("%s/%s", baseURL, doi), record.DefaultKeys, record.DefaultColumns, 0)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, nil
}

// JournalName reads the published journal off the first collection record
// of an executed query.
func JournalName(q *biorxiv.Query) (string, error) {
	result := q.Result()
	if result == nil || result.JSON == nil {
		return "", fmt.Errorf("query for page %d has no JSON result", q.Page())
	}
	rows, err := record.Extract(result.JSON, "collection", []string{"published_journal"}, 0)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("query for page %d returned no records", q.Page())
	}
	return fmt.Sprint(rows[0][1]), nil
}

// PageError records a page that failed after exhausting its retries.
type PageError struct {
	Page int    `json:"page"`
	Err  string `json:"error"`
}

// Summary reports what one harvest run accomplished.
type Summary struct {
	Total       int         `json:"total"`
	Pages       int         `json:"pages"`
	Articles    int         `json:"articles"`
	Published   int         `json:"published"`
	FailedPages []PageError `json:"failed_pages,omitempty"`
	RowErrors   int         `json:"row_errors"`
}

// Run executes a complete harvest against the given details URL: fetch the
// authoritative total, plan the pages, drive them through the worker pool,
// normalize each page, and intern an article per row. A failed page or a
// bad row is recorded in the summary and skipped; the run continues.
func (h *Harvester) Run(ctx context.Context, baseURL string, pageSize, workers int) (*Summary, error) {
	if pageSize <= 0 {
		pageSize = biorxiv.DefaultPageSize
	}

	total, err := h.client.FetchTotal(ctx, baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetching record count: %w", err)
	}

	queries, err := biorxiv.PlanQueries(baseURL, record.DefaultKeys, record.DefaultColumns, pageSize, total)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Total: total, Pages: len(queries)}
	for _, res := range h.client.RunAll(ctx, queries, workers) {
		if res.Err != nil {
			summary.FailedPages = append(summary.FailedPages, PageError{Page: res.Page, Err: res.Err.Error()})
			continue
		}
		h.consumePage(res, pageSize, summary)
	}

	summary.Published = len(h.Articles.PublishedDOIs())
	return summary, nil
}

// consumePage normalizes one completed page and interns its rows.
func (h *Harvester) consumePage(res biorxiv.PageResult, pageSize int, summary *Summary) {
	rows, err := record.Extract(res.Query.Result().JSON, "collection", res.Query.Keys(), res.Page*pageSize)
	if err != nil {
		summary.FailedPages = append(summary.FailedPages, PageError{Page: res.Page, Err: err.Error()})
		return
	}

	table, err := record.Tabularize(rows, res.Query.Columns())
	if err != nil {
		summary.FailedPages = append(summary.FailedPages, PageError{Page: res.Page, Err: err.Error()})
		return
	}

	for _, row := range table.Rows {
		if _, err := h.CreateArticle(row); err != nil {
			summary.RowErrors++
			continue
		}
		summary.Articles++
	}
}

// splitCategories splits a category cell on semicolons, trimming entries.
func splitCategories(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
