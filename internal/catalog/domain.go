// internal/catalog/domain.go
package catalog

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound   = errors.New("catalog item not found")
	ErrDuplicateID    = errors.New("duplicate catalog item id")
	ErrUnknownCourse  = errors.New("pack references an unknown course")
	ErrExternalPack   = errors.New("packs cannot be external")
	ErrExternalInPack = errors.New("packs cannot bundle external courses")
)

// Kind is the commitment tier of an item: lesson < course < pack.
type Kind string

const (
	KindLesson Kind = "lesson"
	KindCourse Kind = "course"
	KindPack   Kind = "pack"
)

// Tier prices are flat per kind, independent of what an item contains.
var (
	LessonPrice = decimal.NewFromInt(70)
	CoursePrice = decimal.NewFromInt(700)
	PackPrice   = decimal.NewFromInt(1200)
)

// Price returns the fixed tier price for k.
func (k Kind) Price() decimal.Decimal {
	switch k {
	case KindLesson:
		return LessonPrice
	case KindCourse:
		return CoursePrice
	case KindPack:
		return PackPrice
	default:
		return decimal.Zero
	}
}

// Rank orders kinds for display: packs first, lessons last.
func (k Kind) Rank() int {
	switch k {
	case KindPack:
		return 0
	case KindCourse:
		return 1
	case KindLesson:
		return 2
	default:
		return 3
	}
}

// Origin tells platform curriculum apart from third-party listings.
type Origin string

const (
	OriginNative   Origin = "native"
	OriginExternal Origin = "external"
)

// Item is one purchasable catalog unit. The set of implementations is closed:
// Lesson, Course and Pack.
type Item interface {
	ItemID() string
	ItemTitle() string
	ItemDescription() string
	Kind() Kind
	ItemOrigin() Origin
	isItem()
}

// Price returns the tier price of any item.
func Price(it Item) decimal.Decimal {
	return it.Kind().Price()
}

// IsExternal reports whether it is a contact-only third-party listing.
func IsExternal(it Item) bool {
	return it.ItemOrigin() == OriginExternal
}

// Lesson is a single unit of content, optionally part of a course.
type Lesson struct {
	ID             string `json:"id" yaml:"id"`
	Title          string `json:"title" yaml:"title"`
	Description    string `json:"description" yaml:"description"`
	Duration       int    `json:"duration_minutes" yaml:"duration_minutes"`
	ParentCourseID string `json:"parent_course_id,omitempty" yaml:"parent_course_id,omitempty"`
	Origin         Origin `json:"origin,omitempty" yaml:"origin,omitempty"`
}

func (l Lesson) ItemID() string          { return l.ID }
func (l Lesson) ItemTitle() string       { return l.Title }
func (l Lesson) ItemDescription() string { return l.Description }
func (l Lesson) Kind() Kind              { return KindLesson }
func (l Lesson) ItemOrigin() Origin      { return normalizeOrigin(l.Origin) }
func (Lesson) isItem()                   {}

// Course groups lessons. TotalLessons is authoritative even when Lessons is empty.
type Course struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description" yaml:"description"`
	TotalLessons int      `json:"total_lessons" yaml:"total_lessons"`
	Lessons      []Lesson `json:"lessons,omitempty" yaml:"lessons,omitempty"`
	Origin       Origin   `json:"origin,omitempty" yaml:"origin,omitempty"`
}

func (c Course) ItemID() string          { return c.ID }
func (c Course) ItemTitle() string       { return c.Title }
func (c Course) ItemDescription() string { return c.Description }
func (c Course) Kind() Kind              { return KindCourse }
func (c Course) ItemOrigin() Origin      { return normalizeOrigin(c.Origin) }
func (Course) isItem()                   {}

// Pack bundles courses. Packs are always native.
type Pack struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	CourseIDs   []string `json:"course_ids" yaml:"course_ids"`
	Features    []string `json:"features,omitempty" yaml:"features,omitempty"`
	Origin      Origin   `json:"origin,omitempty" yaml:"origin,omitempty"`
}

func (p Pack) ItemID() string          { return p.ID }
func (p Pack) ItemTitle() string       { return p.Title }
func (p Pack) ItemDescription() string { return p.Description }
func (p Pack) Kind() Kind              { return KindPack }
func (p Pack) ItemOrigin() Origin      { return normalizeOrigin(p.Origin) }
func (Pack) isItem()                   {}

// Contains reports whether the pack bundles courseID.
func (p Pack) Contains(courseID string) bool {
	for _, id := range p.CourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}

func normalizeOrigin(o Origin) Origin {
	if o == OriginExternal {
		return OriginExternal
	}
	return OriginNative
}

// Snapshot is the serialized form of a whole catalog.
type Snapshot struct {
	Lessons []Lesson `json:"lessons" yaml:"lessons"`
	Courses []Course `json:"courses" yaml:"courses"`
	Packs   []Pack   `json:"packs" yaml:"packs"`
}

// Entry is one row of a browse result.
type Entry struct {
	Item     Item
	External bool
}
