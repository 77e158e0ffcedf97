// Package discord renders news items into webhook embeds, groups them into
// messages under the per-message embed limit and posts them.
package discord

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxEmbedsPerMessage is the webhook limit on embeds in one message.
const MaxEmbedsPerMessage = 10

// Webhook limits on embed text, in characters. MaxMessageRunes bounds the
// titles, descriptions and footers of all embeds in one message together.
const (
	MaxTitleRunes       = 256
	MaxDescriptionRunes = 4096
	MaxFooterRunes      = 2048
	MaxMessageRunes     = 6000
)

// Colors used by the bots.
const (
	ColorDodgerBlue = 0x1E90FF
	ColorGreen      = 0x00FF00
	ColorWhite      = 0xFFFFFF
)

// Payload is the JSON body of one webhook message.
type Payload struct {
	Username string  `json:"username,omitempty"`
	Embeds   []Embed `json:"embeds"`
}

// Embed is a rich content block of a message.
type Embed struct {
	Title       string  `json:"title"`
	URL         string  `json:"url,omitempty"`
	Description string  `json:"description"`
	Color       int     `json:"color,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
}

// Footer is the small text line under an embed.
type Footer struct {
	Text string `json:"text"`
}

// Item is one embed-to-be: a *Header or an *Article.
type Item interface {
	item()
}

// Header opens a digest.
type Header struct {
	Title     string
	Text      string
	Color     int
	LinkedURL string
}

// Article is one summarized news article.
type Article struct {
	Index  int // 1-based; 0 leaves the title unnumbered
	Title  string
	URL    string
	Body   string
	Color  int
	Footer string
}

func (*Header) item()  {}
func (*Article) item() {}

// Render converts an item into its embed. A nil item renders empty.
func Render(it Item) Embed {
	if isNil(it) {
		return Embed{}
	}
	switch v := it.(type) {
	case *Header:
		return Embed{
			Title:       truncate(v.Title, MaxTitleRunes),
			URL:         v.LinkedURL,
			Description: truncate(v.Text, MaxDescriptionRunes),
			Color:       v.Color,
		}
	case *Article:
		e := Embed{
			Title:       v.Title,
			URL:         v.URL,
			Description: truncate(v.Body, MaxDescriptionRunes),
			Color:       v.Color,
		}
		if v.Index > 0 {
			e.Title = fmt.Sprintf("%d. %s", v.Index, v.Title)
		}
		e.Title = truncate(e.Title, MaxTitleRunes)
		if v.Footer != "" {
			e.Footer = &Footer{Text: truncate(v.Footer, MaxFooterRunes)}
		}
		return e
	default:
		return Embed{}
	}
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	if max < 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// Bullets formats summary sentences as a markdown list, one per line.
func Bullets(sentences []string) string {
	var b strings.Builder
	for _, s := range sentences {
		b.WriteString("- ")
		b.WriteString(s)
		b.WriteString("\n")
	}
	return b.String()
}
