// internal/catalog/index.go
package catalog

import "fmt"

// Index is an immutable, validated view of a catalog snapshot. Item order is
// the snapshot order, which the pipeline relies on for stable output.
type Index struct {
	lessons []Lesson
	courses []Course
	packs   []Pack

	byID map[string]Item
}

// NewIndex validates s and builds an index over it. Lessons nested in a course
// are lifted into the lesson list, inheriting that course as parent when they
// name none.
func NewIndex(s Snapshot) (*Index, error) {
	idx := &Index{byID: make(map[string]Item)}

	add := func(it Item) error {
		if it.ItemID() == "" {
			return fmt.Errorf("%s with empty id", it.Kind())
		}
		if prev, ok := idx.byID[it.ItemID()]; ok {
			return fmt.Errorf("%w: %q used by a %s and a %s", ErrDuplicateID, it.ItemID(), prev.Kind(), it.Kind())
		}
		idx.byID[it.ItemID()] = it
		return nil
	}

	for _, c := range s.Courses {
		if err := add(c); err != nil {
			return nil, err
		}
		idx.courses = append(idx.courses, c)
	}

	for _, l := range s.Lessons {
		if err := add(l); err != nil {
			return nil, err
		}
		idx.lessons = append(idx.lessons, l)
	}
	for _, c := range s.Courses {
		for _, l := range c.Lessons {
			if l.ParentCourseID == "" {
				l.ParentCourseID = c.ID
			}
			if existing, ok := idx.byID[l.ID]; ok {
				// listed both at the top level and inside its course
				if _, isLesson := existing.(Lesson); isLesson {
					continue
				}
			}
			if err := add(l); err != nil {
				return nil, err
			}
			idx.lessons = append(idx.lessons, l)
		}
	}

	for _, p := range s.Packs {
		if p.Origin == OriginExternal {
			return nil, fmt.Errorf("%w: %q", ErrExternalPack, p.ID)
		}
		for _, cid := range p.CourseIDs {
			c, ok := idx.byID[cid].(Course)
			if !ok {
				return nil, fmt.Errorf("%w: pack %q lists %q", ErrUnknownCourse, p.ID, cid)
			}
			if IsExternal(c) {
				return nil, fmt.Errorf("%w: pack %q lists %q", ErrExternalInPack, p.ID, cid)
			}
		}
		if err := add(p); err != nil {
			return nil, err
		}
		idx.packs = append(idx.packs, p)
	}

	return idx, nil
}

// Item looks up any item by id.
func (idx *Index) Item(id string) (Item, error) {
	it, ok := idx.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrItemNotFound, id)
	}
	return it, nil
}

// Course looks up a course by id.
func (idx *Index) Course(id string) (Course, bool) {
	c, ok := idx.byID[id].(Course)
	return c, ok
}

// PacksContaining returns, in catalog order, every pack that bundles courseID.
func (idx *Index) PacksContaining(courseID string) []Pack {
	var out []Pack
	for _, p := range idx.packs {
		if p.Contains(courseID) {
			out = append(out, p)
		}
	}
	return out
}

// LessonCount sums TotalLessons over the pack's courses.
func (idx *Index) LessonCount(p Pack) int {
	n := 0
	for _, cid := range p.CourseIDs {
		if c, ok := idx.Course(cid); ok {
			n += c.TotalLessons
		}
	}
	return n
}

func (idx *Index) Lessons() []Lesson { return append([]Lesson(nil), idx.lessons...) }
func (idx *Index) Courses() []Course { return append([]Course(nil), idx.courses...) }
func (idx *Index) Packs() []Pack     { return append([]Pack(nil), idx.packs...) }

// Len is the number of distinct items.
func (idx *Index) Len() int { return len(idx.byID) }

// Snapshot returns the flattened contents of the index. Nested course lessons
// appear once, in the top-level lesson list.
func (idx *Index) Snapshot() Snapshot {
	courses := make([]Course, len(idx.courses))
	for i, c := range idx.courses {
		c.Lessons = nil
		courses[i] = c
	}
	return Snapshot{
		Lessons: idx.Lessons(),
		Courses: courses,
		Packs:   idx.Packs(),
	}
}
