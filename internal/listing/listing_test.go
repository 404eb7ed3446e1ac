package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name    string
	Price   float64
	Due     *time.Time
	Created time.Time
}

func sampleRows() []row {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	d1 := base.AddDate(0, 0, 1)
	d2 := base.AddDate(0, 0, 5)

	return []row{
		{Name: "delta", Price: 40, Due: &d2, Created: base.AddDate(0, 0, 3)},
		{Name: "Alpha", Price: 10, Due: nil, Created: base},
		{Name: "charlie", Price: 30, Due: &d1, Created: base.AddDate(0, 0, 2)},
		{Name: "bravo", Price: 20, Due: nil, Created: base.AddDate(0, 0, 1)},
	}
}

func TestSortByString(t *testing.T) {
	rows := sampleRows()
	sorted := Sort(rows, func(r row) interface{} { return r.Name }, Ascending)

	names := make([]string, 0, len(sorted))
	for _, r := range sorted {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Alpha", "bravo", "charlie", "delta"}, names)

	// Input order untouched.
	assert.Equal(t, "delta", rows[0].Name)
}

func TestSortDescendingIsExactReverse(t *testing.T) {
	rows := sampleRows()

	key := func(r row) interface{} { return r.Price }
	asc := Sort(rows, key, Ascending)
	desc := Sort(rows, key, Descending)

	require.Len(t, desc, len(asc))
	for i := range asc {
		assert.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func TestSortNilDatesLast(t *testing.T) {
	rows := sampleRows()
	key := func(r row) interface{} { return r.Due }

	for _, dir := range []Direction{Ascending, Descending} {
		sorted := Sort(rows, key, dir)
		assert.Nil(t, sorted[2].Due, "direction %s", dir)
		assert.Nil(t, sorted[3].Due, "direction %s", dir)
	}

	asc := Sort(rows, key, Ascending)
	assert.Equal(t, "charlie", asc[0].Name)
	assert.Equal(t, "delta", asc[1].Name)
}

func TestSortByTime(t *testing.T) {
	rows := sampleRows()
	sorted := Sort(rows, func(r row) interface{} { return r.Created }, Descending)
	assert.Equal(t, "delta", sorted[0].Name)
	assert.Equal(t, "Alpha", sorted[3].Name)
}

func TestSortIsStable(t *testing.T) {
	rows := []row{
		{Name: "first", Price: 5},
		{Name: "second", Price: 5},
		{Name: "third", Price: 5},
	}

	sorted := Sort(rows, func(r row) interface{} { return r.Price }, Ascending)
	assert.Equal(t, "first", sorted[0].Name)
	assert.Equal(t, "second", sorted[1].Name)
	assert.Equal(t, "third", sorted[2].Name)
}

func TestPaginate(t *testing.T) {
	records := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name     string
		page     int
		pageSize int
		expected []int
	}{
		{"first page", 1, 3, []int{1, 2, 3}},
		{"middle page", 2, 3, []int{4, 5, 6}},
		{"short last page", 3, 3, []int{7}},
		{"page past end", 4, 3, []int{}},
		{"zero page", 0, 3, []int{}},
		{"zero page size", 1, 0, []int{}},
		{"page size larger than slice", 1, 50, []int{1, 2, 3, 4, 5, 6, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Paginate(records, tt.page, tt.pageSize))
		})
	}
}

// Concatenating every page reconstructs the original order exactly.
func TestPaginatePartition(t *testing.T) {
	records := []int{9, 4, 7, 1, 8, 2, 6, 3, 5}
	pageSize := 4

	var rebuilt []int
	for page := 1; ; page++ {
		chunk := Paginate(records, page, pageSize)
		if len(chunk) == 0 {
			break
		}
		rebuilt = append(rebuilt, chunk...)
	}

	assert.Equal(t, records, rebuilt)
}

func TestPaginateEmptyWheneverOffsetBeyondLength(t *testing.T) {
	records := []int{1, 2, 3}

	for page := 1; page <= 6; page++ {
		for pageSize := 1; pageSize <= 4; pageSize++ {
			got := Paginate(records, page, pageSize)
			if (page-1)*pageSize >= len(records) {
				assert.Empty(t, got, "page=%d size=%d", page, pageSize)
			} else {
				assert.NotEmpty(t, got, "page=%d size=%d", page, pageSize)
			}
		}
	}
}

func TestFilterPredicates(t *testing.T) {
	rows := sampleRows()

	name := func(r row) string { return r.Name }

	t.Run("exact match", func(t *testing.T) {
		got := Filter(rows, Exact(name, "bravo"))
		require.Len(t, got, 1)
		assert.Equal(t, "bravo", got[0].Name)
	})

	t.Run("exact is case sensitive", func(t *testing.T) {
		assert.Empty(t, Filter(rows, Exact(name, "alpha")))
	})

	t.Run("contains is case insensitive", func(t *testing.T) {
		got := Filter(rows, Contains(name, "ALPH"))
		require.Len(t, got, 1)
		assert.Equal(t, "Alpha", got[0].Name)
	})

	t.Run("wildcard sentinel matches everything", func(t *testing.T) {
		assert.Len(t, Filter(rows, Exact(name, All)), len(rows))
		assert.Len(t, Filter(rows, Contains(name, "all")), len(rows))
		assert.Len(t, Filter(rows, Exact(name, "")), len(rows))
	})

	t.Run("predicates compose with AND", func(t *testing.T) {
		got := Filter(rows,
			Contains(name, "a"),
			func(r row) bool { return r.Price >= 20 },
		)
		require.Len(t, got, 3)
		for _, r := range got {
			assert.GreaterOrEqual(t, r.Price, 20.0)
		}
	})

	t.Run("no predicates keeps all", func(t *testing.T) {
		assert.Len(t, Filter(rows), len(rows))
	})
}
