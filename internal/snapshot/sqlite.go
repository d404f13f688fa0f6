// Package snapshot persists the results of a harvest run to SQLite so a
// run can be inspected or diffed later without refetching.
package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jlee2843/Peer-Review-2022/internal/entity"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite snapshot database.
type DB struct {
	db *sql.DB
}

// selectArticleFields is the standard field list for article SELECTs.
const selectArticleFields = `doi, version, title, authors, corresponding_authors,
	institution, pub_date, type, categories_json, xml, pub_doi`

// OpenDB opens or creates a snapshot database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- One row per preprint revision
		CREATE TABLE IF NOT EXISTS articles (
			doi TEXT NOT NULL,
			version INTEGER NOT NULL,
			title TEXT NOT NULL,
			authors TEXT,
			corresponding_authors TEXT,
			institution TEXT,
			pub_date TEXT,
			type TEXT,
			categories_json TEXT,
			xml TEXT,
			pub_doi TEXT,
			PRIMARY KEY (doi, version)
		);

		-- Index for published-DOI lookups
		CREATE INDEX IF NOT EXISTS idx_articles_pub_doi
			ON articles(pub_doi) WHERE pub_doi IS NOT NULL AND pub_doi != 'NA';

		-- One row per published article
		CREATE TABLE IF NOT EXISTS publications (
			pub_doi TEXT PRIMARY KEY,
			journal TEXT NOT NULL,
			article_doi TEXT NOT NULL,
			article_version INTEGER NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveArticles clears the articles table and writes the given revisions.
func (d *DB) SaveArticles(articles []*entity.Article) (int, error) {
	if _, err := d.db.Exec("DELETE FROM articles"); err != nil {
		return 0, fmt.Errorf("clearing articles table: %w", err)
	}

	stmt, err := d.db.Prepare(`
		INSERT INTO articles (
			doi, version, title, authors, corresponding_authors,
			institution, pub_date, type, categories_json, xml, pub_doi
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing article insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range articles {
		categoriesJSON, err := json.Marshal(a.Categories)
		if err != nil {
			return 0, fmt.Errorf("marshaling categories for %s: %w", a.DOI, err)
		}

		var pubDate string
		if !a.Date.IsZero() {
			pubDate = a.Date.Format("2006-01-02")
		}

		_, err = stmt.Exec(
			a.DOI, a.Version, a.Title, a.Authors, a.CorrespondingAuthors,
			a.Institution, pubDate, a.Type, string(categoriesJSON), a.XML, a.PubDOI,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting article %s v%d: %w", a.DOI, a.Version, err)
		}
	}

	return len(articles), nil
}

// SavePublications clears the publications table and writes the given
// publications.
func (d *DB) SavePublications(pubs []*entity.Publication) (int, error) {
	if _, err := d.db.Exec("DELETE FROM publications"); err != nil {
		return 0, fmt.Errorf("clearing publications table: %w", err)
	}

	stmt, err := d.db.Prepare(`
		INSERT INTO publications (pub_doi, journal, article_doi, article_version)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing publication insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pubs {
		_, err := stmt.Exec(p.PubDOI, p.Journal.Title, p.Article.DOI, p.Article.Version)
		if err != nil {
			return 0, fmt.Errorf("inserting publication %s: %w", p.PubDOI, err)
		}
	}

	return len(pubs), nil
}

// GetArticle retrieves the earliest stored revision of a DOI, or nil when
// the DOI is not in the snapshot.
func (d *DB) GetArticle(doi string) (*entity.Article, error) {
	row := d.db.QueryRow(`
		SELECT `+selectArticleFields+`
		FROM articles WHERE doi = ?
		ORDER BY version LIMIT 1`, doi)
	return scanArticle(row)
}

// ArticleVersions retrieves every stored revision of a DOI, version
// ascending.
func (d *DB) ArticleVersions(doi string) ([]entity.Article, error) {
	rows, err := d.db.Query(`
		SELECT `+selectArticleFields+`
		FROM articles WHERE doi = ?
		ORDER BY version`, doi)
	if err != nil {
		return nil, fmt.Errorf("listing versions for %s: %w", doi, err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// ListArticles returns all stored revisions ordered by DOI then version,
// optionally limited.
func (d *DB) ListArticles(limit int) ([]entity.Article, error) {
	query := `SELECT ` + selectArticleFields + ` FROM articles ORDER BY doi, version`
	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"
		args = []interface{}{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// CountArticles returns the number of stored revisions.
func (d *DB) CountArticles() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

// CountPublications returns the number of stored publications.
func (d *DB) CountPublications() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM publications").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(s scanner) (*entity.Article, error) {
	var a entity.Article
	var authors, corrAuthors, institution, pubDate sql.NullString
	var artType, categoriesJSON, xml, pubDOI sql.NullString

	err := s.Scan(
		&a.DOI, &a.Version, &a.Title, &authors, &corrAuthors,
		&institution, &pubDate, &artType, &categoriesJSON, &xml, &pubDOI,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	a.Authors = authors.String
	a.CorrespondingAuthors = corrAuthors.String
	a.Institution = institution.String
	a.Type = artType.String
	a.XML = xml.String
	a.PubDOI = pubDOI.String

	if pubDate.Valid && pubDate.String != "" {
		t, err := time.Parse("2006-01-02", pubDate.String)
		if err != nil {
			return nil, fmt.Errorf("parsing stored date for %s: %w", a.DOI, err)
		}
		a.Date = t
	}

	if categoriesJSON.Valid && categoriesJSON.String != "" {
		if err := json.Unmarshal([]byte(categoriesJSON.String), &a.Categories); err != nil {
			return nil, fmt.Errorf("parsing stored categories for %s: %w", a.DOI, err)
		}
	}

	return &a, nil
}

func scanArticles(rows *sql.Rows) ([]entity.Article, error) {
	var articles []entity.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}
