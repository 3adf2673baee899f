package db

import (
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// EqFilter превращает фильтры в условия равенства, пропуская колонки вне белого списка.
// Ключи сортируются, чтобы текст SQL был стабильным.
func EqFilter(filters map[string]interface{}, allowedMap map[string]string) []sq.Sqlizer {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]sq.Sqlizer, 0, len(keys))
	for _, key := range keys {
		dbCol, ok := allowedMap[key]
		if !ok {
			continue
		}
		val := filters[key]
		if s, ok := val.(string); ok && strings.Contains(s, ",") {
			conds = append(conds, sq.Eq{dbCol: strings.Split(s, ",")})
			continue
		}
		conds = append(conds, sq.Eq{dbCol: val})
	}
	return conds
}

// SearchFilter - ILIKE по любой из колонок. Спецсимволы LIKE экранируются.
func SearchFilter(search string, columns []string) sq.Sqlizer {
	pattern := "%" + escapeLike(search) + "%"
	conds := make(sq.Or, 0, len(columns))
	for _, col := range columns {
		conds = append(conds, sq.Expr(fmt.Sprintf("%s ILIKE ?", col), pattern))
	}
	return conds
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
