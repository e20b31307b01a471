package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseFiltersKeyword(t *testing.T) {
	conditions := parseFilters(map[string][]string{
		"kw_name": {"唱歌"},
	})
	assert.Len(t, conditions, 1)
	assert.Equal(t, "name LIKE ?", conditions[0].expr)
	assert.Equal(t, "%唱歌%", conditions[0].arg)
}

func TestParseFiltersComparisons(t *testing.T) {
	conditions := parseFilters(map[string][]string{
		"exact__category_id": {"3"},
		"ne__is_private":     {"1"},
		"gt__hot_rating":     {"100"},
		"gte__hot_rating":    {"100"},
		"lt__hot_rating":     {"500"},
		"lte__hot_rating":    {"500"},
		"contains__name":     {"pk"},
	})
	assert.Len(t, conditions, 7)

	exprs := make(map[string]bool)
	for _, cond := range conditions {
		exprs[cond.expr] = true
	}
	assert.True(t, exprs["category_id = ?"])
	assert.True(t, exprs["is_private <> ?"])
	assert.True(t, exprs["hot_rating > ?"])
	assert.True(t, exprs["hot_rating >= ?"])
	assert.True(t, exprs["hot_rating < ?"])
	assert.True(t, exprs["hot_rating <= ?"])
	assert.True(t, exprs["name LIKE ?"])
}

func TestParseFiltersDateRange(t *testing.T) {
	conditions := parseFilters(map[string][]string{
		"date_from__created_at": {"2026-08-01"},
		"date_to__created_at":   {"2026-08-31"},
	})
	assert.Len(t, conditions, 2)

	for _, cond := range conditions {
		switch cond.expr {
		case "created_at >= ?":
			assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local), cond.arg)
		case "created_at < ?":
			// date_to 含当日，取次日零点
			assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local), cond.arg)
		default:
			t.Fatalf("意外的条件: %s", cond.expr)
		}
	}
}

func TestParseFiltersRejectsUnknownColumn(t *testing.T) {
	// 不在白名单的列名直接丢弃
	conditions := parseFilters(map[string][]string{
		"exact__password":  {"x"},
		"kw_session_key":   {"x"},
		"gt__balance":      {"0"},
		"exact__author_id": {"5"},
	})
	assert.Len(t, conditions, 1)
	assert.Equal(t, "author_id = ?", conditions[0].expr)
}

func TestParseFiltersIgnoresJunk(t *testing.T) {
	conditions := parseFilters(map[string][]string{
		"page":                  {"1"},
		"name":                  {"裸列名没有前缀"},
		"kw_name":               {""},
		"date_from__created_at": {"not-a-date"},
	})
	assert.Empty(t, conditions)
}
