package platform

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
	"github.com/jaeha-dev/music-metrics-crawler/internal/normalize"
)

// selectorTable is pure per-variant configuration data: the ordered markup
// locations tried for each metric. The first candidate yielding non-empty
// text wins; the rest are not consulted.
type selectorTable struct {
	plays     []string
	listeners []string
}

// searchTable describes a platform's search surface.
type searchTable struct {
	urlFor    func(query string) string
	rows      string
	title     string
	artist    string
	idAttr    string
	idPattern *regexp.Regexp
}

// variant implements collect.Collector and Searcher from static tables.
// Behavior differences between platforms live entirely in the tables.
type variant struct {
	platform  collect.Platform
	caps      collect.Capabilities
	songURL   func(songID string) string
	selectors selectorTable
	search    searchTable
}

func (v *variant) Platform() collect.Platform { return v.platform }

func (v *variant) BuildURL(songID string) string { return v.songURL(songID) }

func (v *variant) Capabilities() collect.Capabilities { return v.caps }

// ParseMetrics extracts the declared metrics from page content. A missing
// metric resolves to nil for this attempt; it is not a fatal error. The
// capability table is enforced regardless of what the markup contains.
func (v *variant) ParseMetrics(content []byte) (collect.MetricSet, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return collect.MetricSet{}, fmt.Errorf("parse %s document: %w", v.platform, err)
	}

	var ms collect.MetricSet
	if v.caps.TotalPlays {
		ms.RawPlays = firstCandidateText(doc, v.selectors.plays)
		if n, err := normalize.Number(ms.RawPlays); err == nil {
			ms.TotalPlays = &n
		}
	}
	if v.caps.TotalListeners {
		ms.RawListeners = firstCandidateText(doc, v.selectors.listeners)
		if n, err := normalize.Number(ms.RawListeners); err == nil {
			ms.TotalListeners = &n
		}
	}
	return ms, nil
}

// SearchURL builds the platform search URL for an encoded query.
func (v *variant) SearchURL(query string) string { return v.search.urlFor(query) }

// ParseResults extracts search rows from the platform's result markup.
func (v *variant) ParseResults(content []byte) ([]SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse %s search results: %w", v.platform, err)
	}

	var results []SearchResult
	doc.Find(v.search.rows).Each(func(_ int, row *goquery.Selection) {
		id := v.extractSongID(row)
		if id == "" {
			return
		}
		results = append(results, SearchResult{
			SongID: id,
			Title:  strings.TrimSpace(row.Find(v.search.title).First().Text()),
			Artist: strings.TrimSpace(row.Find(v.search.artist).First().Text()),
		})
	})
	return results, nil
}

func (v *variant) extractSongID(row *goquery.Selection) string {
	var id string
	row.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		attr, ok := a.Attr(v.search.idAttr)
		if !ok {
			return true
		}
		if m := v.search.idPattern.FindStringSubmatch(attr); m != nil {
			id = m[1]
			return false
		}
		return true
	})
	return id
}

func firstCandidateText(doc *goquery.Document, candidates []string) string {
	for _, sel := range candidates {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}
