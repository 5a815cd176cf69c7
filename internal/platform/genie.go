package platform

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
)

// GENIE exposes both cumulative plays and listeners on the song detail page.
// Search result rows carry the song id in an onclick handler.
var genieSongIDPattern = regexp.MustCompile(`fnViewSongInfo\('?(\d+)'?\)`)

func newGenie() *variant {
	return &variant{
		platform: collect.PlatformGenie,
		caps:     collect.Capabilities{TotalPlays: true, TotalListeners: true},
		songURL: func(songID string) string {
			return fmt.Sprintf("https://www.genie.co.kr/detail/songInfo?xgnm=%s", url.QueryEscape(songID))
		},
		selectors: selectorTable{
			plays: []string{
				".daily-chart .total div.tot p",
				".info-zone .total-play .count",
				".info_data .play_count",
			},
			listeners: []string{
				".daily-chart .total div.choice p",
				".info-zone .total-listener .count",
				".info_data .listener_count",
			},
		},
		search: searchTable{
			urlFor: func(query string) string {
				return "https://www.genie.co.kr/search/searchSong?query=" + url.QueryEscape(query)
			},
			rows:      "table.list-wrap tbody tr.list",
			title:     "a.title",
			artist:    "a.artist",
			idAttr:    "onclick",
			idPattern: genieSongIDPattern,
		},
	}
}
