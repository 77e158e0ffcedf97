package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedXML(n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>매일경제 부동산</title>`)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<item><title>부동산 뉴스 %d</title><link>https://www.mk.co.kr/news/realestate/%d</link>`+
			`<description><![CDATA[<p>요약 <b>%d</b></p>]]></description>`+
			`<pubDate>Mon, 09 Feb 2026 08:%02d:00 +0900</pubDate></item>`, i, i, i, i)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func TestStubs(t *testing.T) {
	feed, err := Parse(feedXML(15))
	require.NoError(t, err)

	got := Stubs(feed, 13)

	require.Len(t, got, 13)
	assert.Equal(t, "부동산 뉴스 1", got[0].Title)
	assert.Equal(t, "https://www.mk.co.kr/news/realestate/1", got[0].URL)
	assert.Equal(t, "요약 1", got[0].Description)
	assert.Equal(t, "Mon, 09 Feb 2026 08:01:00 +0900", got[0].PublishedAt)
	assert.Equal(t, "https://www.mk.co.kr/news/realestate/13", got[12].URL)
}

func TestStubs_DedupsLinks(t *testing.T) {
	raw := `<rss version="2.0"><channel>
<item><title>a</title><link>https://x/1</link></item>
<item><title>b</title><link>https://x/1</link></item>
<item><title>c</title><link>https://x/2</link></item>
</channel></rss>`
	feed, err := Parse(raw)
	require.NoError(t, err)

	got := Stubs(feed, 13)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Title)
	assert.Equal(t, "c", got[1].Title)
}

func TestStubs_NilFeed(t *testing.T) {
	assert.Empty(t, Stubs(nil, 13))
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "hello world", CleanDescription("<div>hello <i>world</i></div>"))
	assert.Equal(t, "", CleanDescription(""))

	long := strings.Repeat("가", 250)
	got := CleanDescription("<p>" + long + "</p>")
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, DescriptionMaxRunes+3, utf8.RuneCountInString(got))
}

func TestReader_Read(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feedXML(3))
	}))
	defer srv.Close()

	feed, err := NewReader(5*time.Second, "krnews-test").Read(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Len(t, feed.Items, 3)
}

func TestReader_ReadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewReader(5*time.Second, "").Read(context.Background(), srv.URL)

	assert.Error(t, err)
}
