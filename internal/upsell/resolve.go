// internal/upsell/resolve.go
package upsell

import (
	"fmt"

	"coursemarket/internal/catalog"
)

// Resolve returns the offer for a lesson or course: the item itself, its
// parent course when it is a lesson, then the first pack holding that course.
// Missing relations are replaced by fallback options, so the result always
// holds 2 or 3 options in ascending tier order.
func Resolve(selected catalog.Item, idx *catalog.Index) ([]Option, error) {
	if catalog.IsExternal(selected) {
		return nil, fmt.Errorf("%s %q: %w", selected.Kind(), selected.ItemID(), ErrExternalItem)
	}

	var courseID string
	options := []Option{OptionFor(selected, idx)}

	switch t := selected.(type) {
	case catalog.Lesson:
		courseID = t.ParentCourseID
		if parent, ok := idx.Course(courseID); ok && !catalog.IsExternal(parent) {
			opt := OptionFor(parent, idx)
			opt.Badge = BadgeRecommended
			options = append(options, opt)
		} else {
			options = append(options, fallbackCourse())
		}
	case catalog.Course:
		courseID = t.ID
	default:
		return nil, fmt.Errorf("%s %q: %w", selected.Kind(), selected.ItemID(), ErrNotGranular)
	}

	if packs := idx.PacksContaining(courseID); len(packs) > 0 {
		opt := OptionFor(packs[0], idx)
		opt.Badge = BadgeBestValue
		options = append(options, opt)
	} else {
		options = append(options, fallbackPack())
	}
	return options, nil
}
