package contact

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppLink(t *testing.T) {
	c := NewWhatsApp("+33 6 12-34-56-78")

	link, err := c.Link("course", "ext-1", "Finance de marché")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(link, "https://wa.me/33612345678?text="))
	u, err := url.Parse(link)
	require.NoError(t, err)
	text := u.Query().Get("text")
	assert.Contains(t, text, "le cours")
	assert.Contains(t, text, "Finance de marché")
	assert.Contains(t, text, "ext-1")
}

func TestWhatsAppLinkWithoutPhone(t *testing.T) {
	_, err := NewWhatsApp(" - ").Link("lesson", "l1", "Intro")
	assert.ErrorIs(t, err, ErrNoPhone)
}
