package catalog

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func fixture() Snapshot {
	return Snapshot{
		Lessons: []Lesson{
			{ID: "L1", Title: "Vecteurs", Description: "Introduction aux vecteurs", Duration: 25, ParentCourseID: "C1"},
			{ID: "L2", Title: "Matrices", Description: "Produit matriciel", Duration: 30, ParentCourseID: "C1"},
			{ID: "L3", Title: "ADN", Description: "Structure de la double hélice", Duration: 20, ParentCourseID: "C2"},
			{ID: "LX", Title: "Pitch en anglais", Description: "Présenter un projet", Duration: 15, ParentCourseID: "X1", Origin: OriginExternal},
		},
		Courses: []Course{
			{ID: "C1", Title: "Algèbre linéaire", Description: "Espaces vectoriels", TotalLessons: 12},
			{ID: "X1", Title: "Anglais des affaires", Description: "Communication professionnelle", TotalLessons: 10, Origin: OriginExternal},
			{ID: "C2", Title: "Biologie cellulaire", Description: "La cellule et ses organites", TotalLessons: 8},
		},
		Packs: []Pack{
			{ID: "P1", Title: "Pack Sciences", Description: "Maths et biologie", CourseIDs: []string{"C1", "C2"}, Features: []string{"Coaching mensuel"}},
		},
	}
}

func mustIndex(t testing.TB, s Snapshot) *Index {
	t.Helper()
	idx, err := NewIndex(s)
	require.NoError(t, err)
	return idx
}

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Item.ItemID())
	}
	return out
}

func TestComputeVisibleItems(t *testing.T) {
	idx := mustIndex(t, fixture())
	rich := decimal.NewFromInt(10_000)

	tests := []struct {
		name    string
		query   Query
		balance decimal.Decimal
		want    []string
	}{
		{"all hides lessons", Query{Filter: FilterAll, Sort: SortPopular}, rich, []string{"P1", "C1", "X1", "C2"}},
		{"empty filter means all", Query{}, rich, []string{"P1", "C1", "X1", "C2"}},
		{"search surfaces lessons", Query{Search: "MATRICE", Filter: FilterAll, Sort: SortPopular}, rich, []string{"L2"}},
		{"search matches description", Query{Search: "hélice", Filter: FilterAll}, rich, []string{"L3"}},
		{"search across tiers", Query{Search: "vect", Filter: FilterAll, Sort: SortNew}, rich, []string{"C1", "L1"}},
		{"courses", Query{Filter: FilterCourses, Sort: SortPopular}, rich, []string{"C1", "X1", "C2"}},
		{"packs", Query{Filter: FilterPacks}, rich, []string{"P1"}},
		{"lessons", Query{Filter: FilterLessons, Sort: SortPopular}, rich, []string{"L3", "L2", "LX", "L1"}},
		{"faculty", Query{Filter: FilterFaculty, Sort: SortPopular}, rich, []string{"P1", "C1", "C2", "L3", "L2", "L1"}},
		{"external", Query{Filter: FilterExternal, Sort: SortPopular}, rich, []string{"X1", "LX"}},
		{"affordable below pack", Query{Filter: FilterAffordable, Sort: SortPopular}, decimal.NewFromInt(800), []string{"C1", "X1", "C2"}},
		{"affordable at pack price", Query{Filter: FilterAffordable, Sort: SortPopular}, decimal.NewFromInt(1200), []string{"P1", "C1", "X1", "C2"}},
		{"affordable with nothing", Query{Filter: FilterAffordable}, decimal.NewFromInt(50), []string{}},
		{"affordable search lessons", Query{Search: "a", Filter: FilterAffordable, Sort: SortPriceAsc}, decimal.NewFromInt(100), []string{"L1", "L2", "L3", "LX"}},
		{"price desc", Query{Filter: FilterFaculty, Sort: SortPriceDesc}, rich, []string{"P1", "C1", "C2", "L1", "L2", "L3"}},
		{"price asc", Query{Filter: FilterFaculty, Sort: SortPriceAsc}, rich, []string{"L1", "L2", "L3", "C1", "C2", "P1"}},
		{"no match", Query{Search: "zzz", Filter: FilterAll}, rich, []string{}},
		{"whitespace is a literal search", Query{Search: " ", Filter: FilterAll, Sort: SortPopular}, rich, []string{"P1", "C1", "X1", "C2", "L3", "L2", "LX", "L1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeVisibleItems(idx, tt.query, tt.balance)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestComputeVisibleItemsFlagsExternal(t *testing.T) {
	idx := mustIndex(t, fixture())

	for _, e := range ComputeVisibleItems(idx, Query{Filter: FilterCourses}, decimal.Zero) {
		assert.Equal(t, e.Item.ItemID() == "X1", e.External, e.Item.ItemID())
	}
}

func genSnapshot(t *rapid.T) Snapshot {
	titles := []string{"Algèbre", "biologie", "Chimie", "droit", "Économie", "finance", "Géométrie"}
	origins := []Origin{OriginNative, OriginExternal}

	var s Snapshot
	nCourses := rapid.IntRange(0, 5).Draw(t, "courses")
	for i := range nCourses {
		s.Courses = append(s.Courses, Course{
			ID:           fmt.Sprintf("c%d", i),
			Title:        rapid.SampledFrom(titles).Draw(t, "course_title"),
			TotalLessons: rapid.IntRange(0, 20).Draw(t, "total_lessons"),
			Origin:       rapid.SampledFrom(origins).Draw(t, "course_origin"),
		})
	}
	nLessons := rapid.IntRange(0, 8).Draw(t, "lessons")
	for i := range nLessons {
		l := Lesson{
			ID:       fmt.Sprintf("l%d", i),
			Title:    rapid.SampledFrom(titles).Draw(t, "lesson_title"),
			Duration: rapid.IntRange(5, 90).Draw(t, "duration"),
			Origin:   rapid.SampledFrom(origins).Draw(t, "lesson_origin"),
		}
		if nCourses > 0 && rapid.Bool().Draw(t, "has_parent") {
			l.ParentCourseID = fmt.Sprintf("c%d", rapid.IntRange(0, nCourses-1).Draw(t, "parent"))
		}
		s.Lessons = append(s.Lessons, l)
	}
	if nCourses > 0 {
		nPacks := rapid.IntRange(0, 3).Draw(t, "packs")
		for i := range nPacks {
			var courseIDs []string
			for c := range nCourses {
				if IsExternal(s.Courses[c]) {
					continue
				}
				if rapid.Bool().Draw(t, "in_pack") {
					courseIDs = append(courseIDs, fmt.Sprintf("c%d", c))
				}
			}
			s.Packs = append(s.Packs, Pack{
				ID:        fmt.Sprintf("p%d", i),
				Title:     rapid.SampledFrom(titles).Draw(t, "pack_title"),
				CourseIDs: courseIDs,
			})
		}
	}
	return s
}

func genQuery(t *rapid.T) Query {
	return Query{
		Search: rapid.SampledFrom([]string{"", "a", "chimie", "É", "zzz"}).Draw(t, "search"),
		Filter: rapid.SampledFrom([]Filter{FilterAll, FilterCourses, FilterPacks, FilterLessons, FilterAffordable, FilterFaculty, FilterExternal}).Draw(t, "filter"),
		Sort:   rapid.SampledFrom([]Sort{SortPriceAsc, SortPriceDesc, SortPopular, SortNew}).Draw(t, "sort"),
	}
}

func TestComputeVisibleItemsDeterministicSubset(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		idx, err := NewIndex(genSnapshot(t))
		if err != nil {
			t.Fatalf("generated catalog rejected: %v", err)
		}
		q := genQuery(t)
		balance := decimal.NewFromInt(int64(rapid.IntRange(0, 2000).Draw(t, "balance")))

		first := ComputeVisibleItems(idx, q, balance)
		second := ComputeVisibleItems(idx, q, balance)
		if fmt.Sprint(ids(first)) != fmt.Sprint(ids(second)) {
			t.Fatalf("non-deterministic: %v vs %v", ids(first), ids(second))
		}

		seen := map[string]bool{}
		for _, e := range first {
			if _, err := idx.Item(e.Item.ItemID()); err != nil {
				t.Fatalf("fabricated item %q", e.Item.ItemID())
			}
			if seen[e.Item.ItemID()] {
				t.Fatalf("item %q listed twice", e.Item.ItemID())
			}
			seen[e.Item.ItemID()] = true
			if q.Filter == FilterAffordable && Price(e.Item).GreaterThan(balance) {
				t.Fatalf("unaffordable %q shown at balance %s", e.Item.ItemID(), balance)
			}
		}
	})
}

func TestComputeVisibleItemsTierOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		idx, err := NewIndex(genSnapshot(t))
		if err != nil {
			t.Fatalf("generated catalog rejected: %v", err)
		}
		q := genQuery(t)
		q.Sort = rapid.SampledFrom([]Sort{SortPopular, SortNew}).Draw(t, "default_sort")

		got := ComputeVisibleItems(idx, q, decimal.NewFromInt(5000))
		for i := 1; i < len(got); i++ {
			prev, cur := got[i-1].Item.Kind().Rank(), got[i].Item.Kind().Rank()
			if prev > cur {
				t.Fatalf("%s %q listed before %s %q", got[i-1].Item.Kind(), got[i-1].Item.ItemID(), got[i].Item.Kind(), got[i].Item.ItemID())
			}
		}
	})
}
