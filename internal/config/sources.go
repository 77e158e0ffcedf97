package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	KindSection = "section" // listing page with a named section of links
	KindRSS     = "rss"
)

// Article caps used when a source leaves max_links out.
const (
	DefaultSectionMaxLinks = 10
	DefaultFeedMaxLinks    = 13
)

// SourcesFile is the YAML layout of the sources file:
//
//	summary:
//	  terminator: "."
//	sources:
//	  - name: hankyung-mr
//	    kind: section
//	    url: https://www.hankyung.com/mr
type SourcesFile struct {
	Summary SummaryConfig `yaml:"summary"`
	Sources []Source      `yaml:"sources"`
}

// SummaryConfig holds the extractive summary rules.
type SummaryConfig struct {
	Terminator   string   `yaml:"terminator"`
	MinRunes     int      `yaml:"min_runes"`
	MaxSentences int      `yaml:"max_sentences"`
	Blacklist    []string `yaml:"blacklist"`
}

// Source is one news source and how its digest is posted.
type Source struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	URL  string `yaml:"url"`

	// Section scraping
	Origin        string `yaml:"origin"`
	SectionHint   string `yaml:"section_hint"`
	ArticleMarker string `yaml:"article_marker"`
	Render        bool   `yaml:"render"`

	MaxLinks            int      `yaml:"max_links"`
	BodySelectors       []string `yaml:"body_selectors"`
	ReadabilityFallback bool     `yaml:"readability_fallback"`

	// Delivery
	Username     string `yaml:"username"`
	HeaderTitle  string `yaml:"header_title"`
	HeaderText   string `yaml:"header_text"` // {date} and {time} are replaced at run time
	HeaderColor  int    `yaml:"header_color"`
	ArticleColor int    `yaml:"article_color"`
	Placeholder  string `yaml:"placeholder"`
}

func (s Source) validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.URL == "" {
		return fmt.Errorf("%s: url is required", s.Name)
	}
	switch s.Kind {
	case KindSection, KindRSS:
	default:
		return fmt.Errorf("%s: kind must be %q or %q", s.Name, KindSection, KindRSS)
	}
	if s.MaxLinks <= 0 {
		return fmt.Errorf("%s: max_links must be positive", s.Name)
	}
	return nil
}

// withDefaults fills the article cap of the source's kind when it is unset.
func (s Source) withDefaults() Source {
	if s.MaxLinks != 0 {
		return s
	}
	switch s.Kind {
	case KindSection:
		s.MaxLinks = DefaultSectionMaxLinks
	case KindRSS:
		s.MaxLinks = DefaultFeedMaxLinks
	}
	return s
}

// DefaultSummary is used when the sources file has no summary block.
func DefaultSummary() SummaryConfig {
	return SummaryConfig{
		Terminator:   ".",
		MinRunes:     30,
		MaxSentences: 3,
		Blacklist:    []string{"기자", "이메일", "ⓒ"},
	}
}

// DefaultSources are the Hankyung morning routine pick and the MK real
// estate feed.
func DefaultSources() []Source {
	return []Source{
		{
			Name:          "hankyung-mr",
			Kind:          KindSection,
			URL:           "https://www.hankyung.com/mr",
			Origin:        "https://www.hankyung.com",
			SectionHint:   "오늘의 기사",
			ArticleMarker: "/article/",
			Render:        true,
			MaxLinks:      DefaultSectionMaxLinks,
			BodySelectors: []string{"#articletxt", ".article-body", ".article_body"},
			Username:      "한경모닝루틴봇",
			HeaderTitle:   "☕ 굿모닝! 한경 모닝루틴 브리핑",
			HeaderText:    "{date} 한국경제 모닝루틴 Pick",
			HeaderColor:   0x1E90FF,
			ArticleColor:  0xFFFFFF,
			Placeholder:   "요약을 가져오지 못했습니다. 링크를 확인하세요.",
		},
		{
			Name:                "mk-realestate",
			Kind:                KindRSS,
			URL:                 "https://www.mk.co.kr/rss/50300009/",
			MaxLinks:            DefaultFeedMaxLinks,
			BodySelectors:       []string{".news_cnt_detail_wrap", "#article_body", ".art_txt"},
			ReadabilityFallback: true,
			Username:            "MK부동산뉴스봇",
			HeaderTitle:         "📰 매일경제 부동산 주요 뉴스",
			HeaderText:          "{date} {time} 기준 최신 뉴스입니다.",
			HeaderColor:         0x00FF00,
			Placeholder:         "요약을 가져오지 못했습니다. 링크를 확인하세요.",
		},
	}
}

// LoadSources reads the sources file at path. A missing file yields the
// default sources.
func LoadSources(path string) (*SourcesFile, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &SourcesFile{Summary: DefaultSummary(), Sources: DefaultSources()}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var file SourcesFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	file.Summary = file.Summary.withDefaults()
	for i := range file.Sources {
		file.Sources[i] = file.Sources[i].withDefaults()
	}
	return &file, nil
}

func (s SummaryConfig) withDefaults() SummaryConfig {
	def := DefaultSummary()
	if s.Terminator == "" {
		s.Terminator = def.Terminator
	}
	if s.MinRunes <= 0 {
		s.MinRunes = def.MinRunes
	}
	if s.MaxSentences <= 0 {
		s.MaxSentences = def.MaxSentences
	}
	if s.Blacklist == nil {
		s.Blacklist = def.Blacklist
	}
	return s
}
