// internal/catalog/pipeline.go
package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Filter selects which part of the catalog a browse shows.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterCourses    Filter = "courses"
	FilterPacks      Filter = "packs"
	FilterLessons    Filter = "lessons"
	FilterAffordable Filter = "affordable"
	FilterFaculty    Filter = "faculty"
	FilterExternal   Filter = "external"
)

// Sort orders a browse result.
type Sort string

const (
	SortPriceAsc  Sort = "price-asc"
	SortPriceDesc Sort = "price-desc"
	SortPopular   Sort = "popular"
	SortNew       Sort = "new"
)

// Query is the browse configuration coming from the storefront.
type Query struct {
	Search string
	Filter Filter
	Sort   Sort
}

// ComputeVisibleItems returns the items a storefront shows for q at the given
// balance. It never fails; an empty result is a valid empty state.
//
// Packs lead whenever they are included. Lessons are left out of the unfiltered
// view unless a search is active. The affordable filter draws from the same
// set as the unfiltered view and then drops anything above the balance.
func ComputeVisibleItems(idx *Index, q Query, balance decimal.Decimal) []Entry {
	filter := q.Filter
	if filter == "" {
		filter = FilterAll
	}
	search := strings.ToLower(q.Search)
	broad := filter == FilterAll || filter == FilterAffordable

	originOK := func(o Origin) bool {
		switch filter {
		case FilterFaculty:
			return o == OriginNative
		case FilterExternal:
			return o == OriginExternal
		default:
			return true
		}
	}

	var out []Entry
	if broad || filter == FilterPacks || filter == FilterFaculty {
		for _, p := range idx.packs {
			out = append(out, Entry{Item: p})
		}
	}
	if broad || filter == FilterCourses || filter == FilterFaculty || filter == FilterExternal {
		for _, c := range idx.courses {
			if originOK(c.ItemOrigin()) {
				out = append(out, Entry{Item: c, External: IsExternal(c)})
			}
		}
	}
	if filter == FilterLessons || filter == FilterFaculty || filter == FilterExternal || (broad && search != "") {
		for _, l := range idx.lessons {
			if originOK(l.ItemOrigin()) {
				out = append(out, Entry{Item: l, External: IsExternal(l)})
			}
		}
	}

	if search != "" {
		out = slices.DeleteFunc(out, func(e Entry) bool { return !matches(e.Item, search) })
	}
	if filter == FilterAffordable {
		out = slices.DeleteFunc(out, func(e Entry) bool { return Price(e.Item).GreaterThan(balance) })
	}

	slices.SortStableFunc(out, compareEntries(q.Sort))
	if out == nil {
		out = []Entry{}
	}
	return out
}

func matches(it Item, lowered string) bool {
	return strings.Contains(strings.ToLower(it.ItemTitle()), lowered) ||
		strings.Contains(strings.ToLower(it.ItemDescription()), lowered)
}

func compareEntries(s Sort) func(a, b Entry) int {
	byRank := func(a, b Entry) int { return cmp.Compare(a.Item.Kind().Rank(), b.Item.Kind().Rank()) }

	switch s {
	case SortPriceAsc:
		return func(a, b Entry) int {
			if c := Price(a.Item).Cmp(Price(b.Item)); c != 0 {
				return c
			}
			return byRank(a, b)
		}
	case SortPriceDesc:
		return func(a, b Entry) int {
			if c := Price(b.Item).Cmp(Price(a.Item)); c != 0 {
				return c
			}
			return byRank(a, b)
		}
	default:
		// no popularity or recency signal exists: popular and new both fall back to title order
		return func(a, b Entry) int {
			if c := byRank(a, b); c != 0 {
				return c
			}
			return strings.Compare(strings.ToLower(a.Item.ItemTitle()), strings.ToLower(b.Item.ItemTitle()))
		}
	}
}
