// Package links finds article links on a rendered listing page.
package links

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/deusflow/krnews/internal/news"
)

const (
	// DefaultMinTitleRunes is the link text length an article link must exceed.
	DefaultMinTitleRunes = 10
	// DefaultMinScopeRunes is the text length below which a section scope is
	// widened to its parent.
	DefaultMinScopeRunes = 50
	// DefaultArticleMarker is the path segment of article URLs.
	DefaultArticleMarker = "/article/"
)

// Options controls link extraction on one listing page.
type Options struct {
	// SectionHint is text that names the section holding the links,
	// e.g. "오늘의 기사". Empty means the whole page.
	SectionHint string
	// ArticleMarker must appear in the href of an article link.
	ArticleMarker string
	// Origin resolves relative hrefs, e.g. "https://www.hankyung.com".
	Origin        string
	MinTitleRunes int
	MinScopeRunes int
}

func (o Options) withDefaults() Options {
	if o.ArticleMarker == "" {
		o.ArticleMarker = DefaultArticleMarker
	}
	if o.MinTitleRunes <= 0 {
		o.MinTitleRunes = DefaultMinTitleRunes
	}
	if o.MinScopeRunes <= 0 {
		o.MinScopeRunes = DefaultMinScopeRunes
	}
	return o
}

// blockElements may serve as a section scope.
var blockElements = map[string]bool{
	"div":     true,
	"section": true,
	"article": true,
	"aside":   true,
	"main":    true,
	"nav":     true,
	"ul":      true,
	"ol":      true,
}

// Extract returns at most maxLinks article stubs from doc, in document order,
// with absolute unique URLs. When the section hint is not found the whole
// document is scanned.
func Extract(doc *goquery.Document, opts Options, maxLinks int) []news.Stub {
	opts = opts.withDefaults()

	scope := Section(doc, opts.SectionHint, opts.MinScopeRunes)
	if scope == nil {
		scope = doc.Selection
	}

	base, _ := url.Parse(opts.Origin)

	var stubs []news.Stub
	scope.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, opts.ArticleMarker) {
			return
		}
		title := news.NormalizeWhitespace(a.Text())
		if utf8.RuneCountInString(title) <= opts.MinTitleRunes {
			return
		}
		abs := Resolve(base, href)
		if abs == "" {
			return
		}
		stubs = append(stubs, news.Stub{Title: title, URL: abs})
	})

	return news.Dedup(stubs, maxLinks)
}

// Section finds the first text node containing hint and returns its nearest
// block-level ancestor, widened upward while its text is shorter than
// minRunes. It returns nil when hint is empty or absent.
func Section(doc *goquery.Document, hint string, minRunes int) *goquery.Selection {
	if hint == "" || len(doc.Nodes) == 0 {
		return nil
	}
	textNode := findText(doc.Nodes[0], hint)
	if textNode == nil {
		return nil
	}

	block := textNode.Parent
	for block != nil && !(block.Type == html.ElementNode && blockElements[block.Data]) {
		block = block.Parent
	}
	if block == nil {
		return nil
	}

	scope := goquery.NewDocumentFromNode(block).Selection
	for utf8.RuneCountInString(strings.TrimSpace(scope.Text())) < minRunes {
		parent := scope.Parent()
		if parent.Length() == 0 {
			break
		}
		scope = parent
	}
	return scope
}

func findText(n *html.Node, hint string) *html.Node {
	if n.Type == html.TextNode && strings.Contains(n.Data, hint) {
		return n
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findText(c, hint); found != nil {
			return found
		}
	}
	return nil
}

// Resolve makes href absolute against base. It returns "" for hrefs that
// cannot be parsed or resolved to an http(s) URL.
func Resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if !ref.IsAbs() {
		if base == nil || base.Host == "" {
			return ""
		}
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}

// FindVideoLink returns the live broadcast link on a listing page: the first
// YouTube watch link, else the first embedded YouTube iframe.
func FindVideoLink(doc *goquery.Document) string {
	var link string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.Contains(href, "youtube.com/watch") || strings.Contains(href, "youtu.be") {
			link = href
			return false
		}
		return true
	})
	if link != "" {
		return link
	}

	if src, ok := doc.Find("iframe[src]").First().Attr("src"); ok && strings.Contains(src, "youtube") {
		return src
	}
	return ""
}
