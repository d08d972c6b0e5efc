// internal/contact/contact.go

// Package contact builds the outside messaging links offered for external
// catalog listings, which cannot be bought on the platform.
package contact

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrNoPhone = errors.New("no contact phone configured")

// WhatsApp links to a wa.me chat prefilled with a message naming the item.
type WhatsApp struct {
	Phone string
}

func NewWhatsApp(phone string) *WhatsApp {
	return &WhatsApp{Phone: phone}
}

func (c *WhatsApp) Link(kind, id, title string) (string, error) {
	phone := digits(c.Phone)
	if phone == "" {
		return "", ErrNoPhone
	}
	msg := fmt.Sprintf("Bonjour, je suis intéressé(e) par %s « %s » (réf. %s).", label(kind), title, id)
	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(msg), nil
}

func label(kind string) string {
	switch kind {
	case "lesson":
		return "la leçon"
	case "course":
		return "le cours"
	default:
		return "l'offre"
	}
}

// digits strips everything but 0-9; wa.me wants the bare international number.
func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
