package services

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
)

func terms(q repositories.ItemQuery, field string) []string {
	var out []string
	for _, p := range q.Search {
		if p.Field == field {
			out = append(out, p.Term)
		}
	}
	return out
}

func TestBuildCatalogQuery_Defaults(t *testing.T) {
	q, err := BuildCatalogQuery(CatalogParams{})
	require.NoError(t, err)

	assert.Empty(t, q.Search)
	assert.Nil(t, q.MinPrice)
	assert.Nil(t, q.MaxPrice)
	assert.Equal(t, "name", q.SortField)
	assert.False(t, q.SortDesc)
	assert.EqualValues(t, 0, q.Skip)
	assert.EqualValues(t, DefaultPageSize, q.Limit)
}

func TestBuildCatalogQuery_NavbarSynonyms(t *testing.T) {
	tests := []struct {
		search       string
		wantName     []string
		wantCategory []string
	}{
		{"tshirt", []string{"tshirt", "t-shirt"}, []string{"tshirt", "t-shirt", "clothing"}},
		{"shirt", []string{"shirt", "t-shirt"}, []string{"shirt", "t-shirt", "clothing"}},
		{"T-Shirt", []string{"t-shirt", "shirt"}, []string{"t-shirt", "shirt", "clothing"}},
		{"laptop", []string{"laptop", "computer"}, []string{"laptop", "computer", "electronics"}},
		{"computer", []string{"computer", "laptop"}, []string{"computer", "laptop"}},
		{"red mug", []string{"red", "mug"}, []string{"red", "mug"}},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			q, err := BuildCatalogQuery(CatalogParams{NavbarSearch: tt.search})
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, terms(q, "name"))
			assert.Equal(t, tt.wantName, terms(q, "description"))
			assert.Equal(t, tt.wantCategory, terms(q, "category"))
		})
	}
}

func TestBuildCatalogQuery_FilterSearchJoinsDisjunction(t *testing.T) {
	q, err := BuildCatalogQuery(CatalogParams{NavbarSearch: "mug", FilterSearch: "blue", Category: "kitchen"})
	require.NoError(t, err)

	assert.Equal(t, "kitchen", q.Category)
	assert.Equal(t, []string{"mug", "blue"}, terms(q, "name"))
	assert.Len(t, q.Search, 6)
}

func TestBuildCatalogQuery_Prices(t *testing.T) {
	q, err := BuildCatalogQuery(CatalogParams{MinPrice: "15", MaxPrice: "abc"})
	require.NoError(t, err)
	require.NotNil(t, q.MinPrice)
	assert.Equal(t, 15.0, *q.MinPrice)
	assert.Nil(t, q.MaxPrice, "non-numeric bounds are ignored")
}

func TestBuildCatalogQuery_Sort(t *testing.T) {
	tests := []struct {
		in    string
		field string
		desc  bool
	}{
		{"price", "price", false},
		{"-price", "price", true},
		{"-rating", "rating", true},
		{"stock", "stock", false},
		{"color", "name", false},
		{"-color", "name", true},
		{"", "name", false},
	}
	for _, tt := range tests {
		q, err := BuildCatalogQuery(CatalogParams{SortBy: tt.in})
		require.NoError(t, err)
		assert.Equal(t, tt.field, q.SortField, tt.in)
		assert.Equal(t, tt.desc, q.SortDesc, tt.in)
	}
}

func TestBuildCatalogQuery_Paging(t *testing.T) {
	q, err := BuildCatalogQuery(CatalogParams{Page: "3", PageSize: "10"})
	require.NoError(t, err)
	assert.EqualValues(t, 20, q.Skip)
	assert.EqualValues(t, 10, q.Limit)

	q, err = BuildCatalogQuery(CatalogParams{Page: "0", PageSize: "-5"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, q.Skip)
	assert.EqualValues(t, DefaultPageSize, q.Limit)

	q, err = BuildCatalogQuery(CatalogParams{PageSize: "1000"})
	require.NoError(t, err)
	assert.EqualValues(t, MaxPageSize, q.Limit)

	_, err = BuildCatalogQuery(CatalogParams{Page: "two"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = BuildCatalogQuery(CatalogParams{PageSize: "1.5"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCatalogParamsFrom(t *testing.T) {
	v := url.Values{}
	v.Set("navbarSearch", "tshirt")
	v.Set("sortBy", "-price")
	v.Set("pageSize", "5")

	p := CatalogParamsFrom(v)
	assert.Equal(t, "tshirt", p.NavbarSearch)
	assert.Equal(t, "-price", p.SortBy)
	assert.Equal(t, "5", p.PageSize)
}
