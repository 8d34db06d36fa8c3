package store

import "sort"

// ColumnSort is one table column's sort state as reported by the UI. Order is
// empty when the column is unsorted.
type ColumnSort struct {
	Field    string `json:"field"`
	Order    string `json:"order"`
	Priority int    `json:"priority"`
}

// BuildSort flattens simultaneously-sorted columns into the sort_by map the
// platform expects. Columns without a defined order contribute nothing. A
// lower Priority value means a more significant column; columns are written
// in falling significance order so a duplicated field resolves to its most
// significant direction. The map itself carries no ordering, which the
// upstream API does not require.
func BuildSort(cols []ColumnSort) map[string]string {
	ordered := make([]ColumnSort, 0, len(cols))
	for _, c := range cols {
		if c.Order != "" {
			ordered = append(ordered, c)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	sortBy := make(map[string]string, len(ordered))
	for _, c := range ordered {
		switch c.Order {
		case "asc", "ascend":
			sortBy[c.Field] = "asc"
		case "desc", "descend":
			sortBy[c.Field] = "desc"
		}
	}
	return sortBy
}
