package platform

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
)

// MELON renders the cumulative streaming count client-side, which is why
// this platform is the usual customer of the headless tier. Listener totals
// are not public.
var melonSongIDPattern = regexp.MustCompile(`goSongDetail\('?(\d+)'?\)`)

func newMelon() *variant {
	return &variant{
		platform: collect.PlatformMelon,
		caps:     collect.Capabilities{TotalPlays: true, TotalListeners: false},
		songURL: func(songID string) string {
			return fmt.Sprintf("https://www.melon.com/song/detail.htm?songId=%s", url.QueryEscape(songID))
		},
		selectors: selectorTable{
			plays: []string{
				".streaming_info .cnt_info .cnt",
				".wrap_cntt_like .cnt_total",
				".entry .total_streaming",
			},
		},
		search: searchTable{
			urlFor: func(query string) string {
				return "https://www.melon.com/search/song/index.htm?q=" + url.QueryEscape(query)
			},
			rows:      "table tbody tr",
			title:     "a.fc_gray",
			artist:    "div.ellipsis.rank02 a",
			idAttr:    "href",
			idPattern: melonSongIDPattern,
		},
	}
}
