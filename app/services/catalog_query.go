package services

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	maxPage = 1 << 31 // keeps the offset inside int64
)

// searchFields are matched by every free-text term.
var searchFields = []string{"name", "category", "description"}

// synonyms are substring rewrites tried in order; the first match wins so
// "t-shirt" is not rewritten again by the "shirt" rule.
var synonyms = []struct{ from, to string }{
	{"t-shirt", "shirt"},
	{"tshirt", "t-shirt"},
	{"shirt", "t-shirt"},
	{"laptop", "computer"},
	{"computer", "laptop"},
}

// categorySynonyms map a term fragment onto a category it implies.
var categorySynonyms = []struct{ term, category string }{
	{"shirt", "clothing"},
	{"tshirt", "clothing"},
	{"laptop", "electronics"},
}

// sortable fields; anything else sorts by name.
var sortable = map[string]bool{"price": true, "rating": true, "stock": true}

// CatalogParams are the raw listing parameters from the query string.
type CatalogParams struct {
	Category     string
	NavbarSearch string
	FilterSearch string
	MinPrice     string
	MaxPrice     string
	SortBy       string
	Page         string
	PageSize     string
}

// CatalogParamsFrom reads the listing parameters from q.
func CatalogParamsFrom(q url.Values) CatalogParams {
	return CatalogParams{
		Category:     q.Get("category"),
		NavbarSearch: q.Get("navbarSearch"),
		FilterSearch: q.Get("filterSearch"),
		MinPrice:     q.Get("minPrice"),
		MaxPrice:     q.Get("maxPrice"),
		SortBy:       q.Get("sortBy"),
		Page:         q.Get("page"),
		PageSize:     q.Get("pageSize"),
	}
}

// BuildCatalogQuery compiles p into an ItemQuery. Only a non-integer page or
// pageSize is an error; malformed prices are ignored.
func BuildCatalogQuery(p CatalogParams) (repositories.ItemQuery, error) {
	var q repositories.ItemQuery

	q.Category = strings.TrimSpace(p.Category)
	q.MinPrice = parsePrice(p.MinPrice)
	q.MaxPrice = parsePrice(p.MaxPrice)

	preds := newPredicateSet()
	for _, term := range strings.Fields(p.NavbarSearch) {
		preds.addTerm(term)
		lower := strings.ToLower(term)
		for _, s := range synonyms {
			if strings.Contains(lower, s.from) {
				preds.addTerm(strings.ReplaceAll(lower, s.from, s.to))
				break
			}
		}
		for _, c := range categorySynonyms {
			if strings.Contains(lower, c.term) {
				preds.add("category", c.category)
			}
		}
	}
	if term := strings.TrimSpace(p.FilterSearch); term != "" {
		preds.addTerm(term)
	}
	q.Search = preds.list

	q.SortField, q.SortDesc = parseSort(p.SortBy)

	page, err := parsePositive("page", p.Page, DefaultPage)
	if err != nil {
		return q, err
	}
	size, err := parsePositive("pageSize", p.PageSize, DefaultPageSize)
	if err != nil {
		return q, err
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page > maxPage {
		page = maxPage
	}

	q.Skip = int64(page-1) * int64(size)
	q.Limit = int64(size)
	return q, nil
}

type predicateSet struct {
	seen map[repositories.Predicate]bool
	list []repositories.Predicate
}

func newPredicateSet() *predicateSet {
	return &predicateSet{seen: make(map[repositories.Predicate]bool)}
}

func (s *predicateSet) add(field, term string) {
	p := repositories.Predicate{Field: field, Term: strings.ToLower(term)}
	if p.Term == "" || s.seen[p] {
		return
	}
	s.seen[p] = true
	s.list = append(s.list, p)
}

func (s *predicateSet) addTerm(term string) {
	for _, f := range searchFields {
		s.add(f, term)
	}
}

func parsePrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseSort(raw string) (field string, desc bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "-") {
		desc = true
		raw = raw[1:]
	}
	if sortable[raw] {
		return raw, desc
	}
	return "name", desc
}

func parsePositive(name, raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation(name + " must be an integer")
	}
	if n < 1 {
		return def, nil
	}
	return n, nil
}
