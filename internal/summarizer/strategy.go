package summarizer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/deusflow/krnews/internal/news"
)

// Strategy locates the article body in a parsed page and returns its plain
// text, or "" when the page does not match.
type Strategy struct {
	Name   string
	Locate func(doc *goquery.Document) string
}

// DefaultBodySelectors are the body containers used by the Hankyung article
// templates, most specific first.
var DefaultBodySelectors = []string{"#articletxt", ".article-body", ".article_body"}

// SelectorStrategy matches the first element for selector.
func SelectorStrategy(selector string) Strategy {
	return Strategy{
		Name: selector,
		Locate: func(doc *goquery.Document) string {
			sel := doc.Find(selector).First()
			if sel.Length() == 0 {
				return ""
			}
			return PlainText(sel)
		},
	}
}

// SelectorStrategies builds one strategy per selector, keeping order.
func SelectorStrategies(selectors []string) []Strategy {
	out := make([]Strategy, 0, len(selectors))
	for _, s := range selectors {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, SelectorStrategy(s))
		}
	}
	return out
}

// ReadabilityStrategy runs go-readability over the whole page. It is meant
// as the last entry of a strategy list, after all template selectors.
func ReadabilityStrategy() Strategy {
	return Strategy{
		Name: "readability",
		Locate: func(doc *goquery.Document) string {
			if len(doc.Nodes) == 0 {
				return ""
			}
			article, err := readability.FromDocument(doc.Nodes[0], nil)
			if err != nil {
				return ""
			}
			return news.NormalizeWhitespace(article.TextContent)
		},
	}
}

var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
}

// PlainText returns the text under sel with tags stripped, a separator
// between text nodes and whitespace collapsed.
func PlainText(sel *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			if skippedElements[n.Data] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return news.NormalizeWhitespace(strings.Join(parts, " "))
}
