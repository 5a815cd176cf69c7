package platform

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
)

// BUGS publishes a cumulative play count only; listener totals are not
// exposed anywhere on the public track page.
var bugsSongIDPattern = regexp.MustCompile(`/track/(\d+)`)

func newBugs() *variant {
	return &variant{
		platform: collect.PlatformBugs,
		caps:     collect.Capabilities{TotalPlays: true, TotalListeners: false},
		songURL: func(songID string) string {
			return fmt.Sprintf("https://music.bugs.co.kr/track/%s", url.PathEscape(songID))
		},
		selectors: selectorTable{
			plays: []string{
				"table.info td.play em",
				".trackInfo .statistics .play .num",
				".basicInfo .playCount",
			},
		},
		search: searchTable{
			urlFor: func(query string) string {
				return "https://music.bugs.co.kr/search/track?q=" + url.QueryEscape(query)
			},
			rows:      "table.trackList tbody tr",
			title:     "p.title a",
			artist:    "p.artist a",
			idAttr:    "href",
			idPattern: bugsSongIDPattern,
		},
	}
}
