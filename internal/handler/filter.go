package handler

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// 查询参数前缀 -> SQL 条件，闭合集合，未知前缀的参数忽略
//
//	kw_<col>=x        LIKE %x%
//	exact__<col>=x    =
//	ne__<col>=x       <>
//	gt__<col>=x       >
//	gte__<col>=x      >=
//	lt__<col>=x       <
//	lte__<col>=x      <=
//	contains__<col>=x LIKE %x%
//	date_from__<col>  >= 当日零点
//	date_to__<col>    < 次日零点
const dateLayout = "2006-01-02"

type filterCondition struct {
	expr string
	arg  interface{}
}

// 允许过滤的列名白名单，防任意列探测
var filterableColumns = map[string]bool{
	"name":        true,
	"author_id":   true,
	"category_id": true,
	"is_private":  true,
	"is_free":     true,
	"hot_rating":  true,
	"created_at":  true,
	"ended_at":    true,
}

// parseFilters 把查询参数翻译成条件列表
func parseFilters(params map[string][]string) []filterCondition {
	var conditions []filterCondition

	add := func(expr, column string, arg interface{}) {
		if !filterableColumns[column] {
			return
		}
		conditions = append(conditions, filterCondition{expr: column + " " + expr, arg: arg})
	}

	for key, values := range params {
		if len(values) == 0 || values[0] == "" {
			continue
		}
		value := values[0]

		switch {
		case strings.HasPrefix(key, "kw_"):
			add("LIKE ?", strings.TrimPrefix(key, "kw_"), "%"+value+"%")
		case strings.HasPrefix(key, "exact__"):
			add("= ?", strings.TrimPrefix(key, "exact__"), value)
		case strings.HasPrefix(key, "ne__"):
			add("<> ?", strings.TrimPrefix(key, "ne__"), value)
		case strings.HasPrefix(key, "gt__"):
			add("> ?", strings.TrimPrefix(key, "gt__"), value)
		case strings.HasPrefix(key, "gte__"):
			add(">= ?", strings.TrimPrefix(key, "gte__"), value)
		case strings.HasPrefix(key, "lt__"):
			add("< ?", strings.TrimPrefix(key, "lt__"), value)
		case strings.HasPrefix(key, "lte__"):
			add("<= ?", strings.TrimPrefix(key, "lte__"), value)
		case strings.HasPrefix(key, "contains__"):
			add("LIKE ?", strings.TrimPrefix(key, "contains__"), "%"+value+"%")
		case strings.HasPrefix(key, "date_from__"):
			if t, err := time.ParseInLocation(dateLayout, value, time.Local); err == nil {
				add(">= ?", strings.TrimPrefix(key, "date_from__"), t)
			}
		case strings.HasPrefix(key, "date_to__"):
			if t, err := time.ParseInLocation(dateLayout, value, time.Local); err == nil {
				add("< ?", strings.TrimPrefix(key, "date_to__"), t.AddDate(0, 0, 1))
			}
		}
	}
	return conditions
}

// applyFilters 把条件挂到 gorm 查询上
func applyFilters(query *gorm.DB, params map[string][]string) *gorm.DB {
	for _, cond := range parseFilters(params) {
		query = query.Where(cond.expr, cond.arg)
	}
	return query
}
