// internal/upsell/option.go

// Package upsell builds the tiered comparison shown when a learner tries to
// buy a single lesson or course.
package upsell

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"coursemarket/internal/account"
	"coursemarket/internal/catalog"
)

var (
	ErrNotGranular  = errors.New("only lessons and courses have upsell offers")
	ErrExternalItem = errors.New("external items cannot be purchased")
)

const (
	BadgeRecommended = "Recommandé"
	BadgeBestValue   = "Meilleur investissement"
)

// Option is one purchasable tier in an offer.
type Option struct {
	Tier       catalog.Kind    `json:"type"`
	ItemID     string          `json:"item_id"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	Features   []string        `json:"features"`
	Badge      string          `json:"badge,omitempty"`
	CourseIDs  []string        `json:"course_ids,omitempty"`
	Fallback   bool            `json:"fallback"`
	Affordable bool            `json:"affordable"`
}

// OptionFor prices it at its own tier with no badge.
func OptionFor(it catalog.Item, idx *catalog.Index) Option {
	opt := Option{
		Tier:   it.Kind(),
		ItemID: it.ItemID(),
		Title:  it.ItemTitle(),
		Price:  catalog.Price(it),
	}
	switch t := it.(type) {
	case catalog.Lesson:
		opt.Features = lessonFeatures(t)
	case catalog.Course:
		opt.Features = courseFeatures(t)
	case catalog.Pack:
		opt.Features = packFeatures(t, idx)
		opt.CourseIDs = append([]string(nil), t.CourseIDs...)
	}
	return opt
}

func lessonFeatures(l catalog.Lesson) []string {
	return []string{
		"Accès à cette leçon uniquement",
		fmt.Sprintf("%d minutes de contenu", l.Duration),
	}
}

func courseFeatures(c catalog.Course) []string {
	return []string{
		fmt.Sprintf("%d leçons incluses", c.TotalLessons),
		"Accès illimité au cours complet",
		"Suivi de progression",
	}
}

func packFeatures(p catalog.Pack, idx *catalog.Index) []string {
	features := []string{
		fmt.Sprintf("%d cours inclus", len(p.CourseIDs)),
		fmt.Sprintf("%d leçons au total", idx.LessonCount(p)),
	}
	return append(features, p.Features...)
}

func fallbackCourse() Option {
	return Option{
		Tier:     catalog.KindCourse,
		ItemID:   "fallback-course",
		Title:    "Cours complet",
		Price:    catalog.CoursePrice,
		Features: []string{"Toutes les leçons du cours", "Accès illimité"},
		Badge:    BadgeRecommended,
		Fallback: true,
	}
}

func fallbackPack() Option {
	return Option{
		Tier:     catalog.KindPack,
		ItemID:   "fallback-pack",
		Title:    "Pack complet",
		Price:    catalog.PackPrice,
		Features: []string{"Plusieurs cours inclus", "Meilleur rapport qualité-prix"},
		Badge:    BadgeBestValue,
		Fallback: true,
	}
}

// Annotate returns a copy of options with Affordable set against balance.
func Annotate(options []Option, balance decimal.Decimal) []Option {
	out := make([]Option, len(options))
	for i, o := range options {
		o.Affordable = account.CanAfford(o.Price, balance)
		out[i] = o
	}
	return out
}

// Layout is how an offer is presented.
type Layout string

const (
	LayoutDirect Layout = "direct"
	LayoutTiered Layout = "tiered"
)

// LayoutFor picks the tiered comparison only when a real pack is on offer.
func LayoutFor(options []Option) Layout {
	for _, o := range options {
		if o.Tier == catalog.KindPack && !o.Fallback {
			return LayoutTiered
		}
	}
	return LayoutDirect
}
