package platform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
)

func TestRegistryDispatch(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, p := range []collect.Platform{collect.PlatformGenie, collect.PlatformBugs, collect.PlatformMelon} {
		c, err := r.Collector(p)
		require.NoError(t, err)
		require.Equal(t, p, c.Platform())

		s, err := r.Searcher(p)
		require.NoError(t, err)
		require.Equal(t, p, s.Platform())
	}

	require.False(t, r.Supported("SPOTIFY"))
	_, err := r.Collector("SPOTIFY")
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestBuildURLs(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	genie, _ := r.Collector(collect.PlatformGenie)
	require.Equal(t, "https://www.genie.co.kr/detail/songInfo?xgnm=102623554", genie.BuildURL("102623554"))

	bugs, _ := r.Collector(collect.PlatformBugs)
	require.Equal(t, "https://music.bugs.co.kr/track/6077818", bugs.BuildURL("6077818"))

	melon, _ := r.Collector(collect.PlatformMelon)
	require.Equal(t, "https://www.melon.com/song/detail.htm?songId=33077590", melon.BuildURL("33077590"))
}

func TestGenieParseMetrics(t *testing.T) {
	t.Parallel()

	html := `
<html><body>
  <div class="daily-chart">
    <div class="total">
      <div class="tot"><p>1,234,567</p></div>
      <div class="choice"><p>98,765</p></div>
    </div>
  </div>
</body></html>`

	r := NewRegistry()
	genie, _ := r.Collector(collect.PlatformGenie)
	ms, err := genie.ParseMetrics([]byte(html))
	require.NoError(t, err)
	require.NotNil(t, ms.TotalPlays)
	require.Equal(t, int64(1234567), *ms.TotalPlays)
	require.NotNil(t, ms.TotalListeners)
	require.Equal(t, int64(98765), *ms.TotalListeners)
	require.Equal(t, "1,234,567", ms.RawPlays)
}

func TestGenieFallbackSelectorWins(t *testing.T) {
	t.Parallel()

	// New markup layout: only the second candidate matches.
	html := `
<html><body>
  <div class="info-zone">
    <div class="total-play"><span class="count">12.3만</span></div>
    <div class="total-listener"><span class="count">5.6만</span></div>
  </div>
</body></html>`

	r := NewRegistry()
	genie, _ := r.Collector(collect.PlatformGenie)
	ms, err := genie.ParseMetrics([]byte(html))
	require.NoError(t, err)
	require.NotNil(t, ms.TotalPlays)
	require.Equal(t, int64(123000), *ms.TotalPlays)
	require.NotNil(t, ms.TotalListeners)
	require.Equal(t, int64(56000), *ms.TotalListeners)
}

func TestCapabilityEnforcement(t *testing.T) {
	t.Parallel()

	// Markup deliberately contains listener-looking numbers in selectors the
	// platform does not declare; they must never surface.
	html := `
<html><body>
  <table class="info"><tr><td class="play"><em>7,654,321</em></td></tr></table>
  <div class="info_data"><span class="listener_count">999,999</span></div>
</body></html>`

	r := NewRegistry()
	bugs, _ := r.Collector(collect.PlatformBugs)
	require.False(t, bugs.Capabilities().TotalListeners)

	ms, err := bugs.ParseMetrics([]byte(html))
	require.NoError(t, err)
	require.NotNil(t, ms.TotalPlays)
	require.Equal(t, int64(7654321), *ms.TotalPlays)
	require.Nil(t, ms.TotalListeners)
	require.Empty(t, ms.RawListeners)
}

func TestPartialExtractionSurvivesBadText(t *testing.T) {
	t.Parallel()

	// Listener cell holds no recognizable number; plays must still extract.
	html := `
<html><body>
  <div class="daily-chart">
    <div class="total">
      <div class="tot"><p>42,000</p></div>
      <div class="choice"><p>비공개</p></div>
    </div>
  </div>
</body></html>`

	r := NewRegistry()
	genie, _ := r.Collector(collect.PlatformGenie)
	ms, err := genie.ParseMetrics([]byte(html))
	require.NoError(t, err)
	require.NotNil(t, ms.TotalPlays)
	require.Equal(t, int64(42000), *ms.TotalPlays)
	require.Nil(t, ms.TotalListeners)
	require.Equal(t, "비공개", ms.RawListeners)
	require.False(t, ms.Empty())
}

func TestEmptyParse(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	melon, _ := r.Collector(collect.PlatformMelon)
	ms, err := melon.ParseMetrics([]byte("<html><body><div id=app></div></body></html>"))
	require.NoError(t, err)
	require.True(t, ms.Empty())
}

func TestGenieParseSearchResults(t *testing.T) {
	t.Parallel()

	html := `
<html><body>
<table class="list-wrap"><tbody>
  <tr class="list">
    <td><a href="#" onclick="fnViewSongInfo('102623554')">듣기</a></td>
    <td><a class="title" href="#">첫사랑</a></td>
    <td><a class="artist" href="#">정키</a></td>
  </tr>
  <tr class="list">
    <td><a href="#" onclick="fnViewSongInfo('88110467')">듣기</a></td>
    <td><a class="title" href="#">첫사랑 (Acoustic Ver.)</a></td>
    <td><a class="artist" href="#">정키</a></td>
  </tr>
</tbody></table>
</body></html>`

	r := NewRegistry()
	genie, err := r.Searcher(collect.PlatformGenie)
	require.NoError(t, err)

	results, err := genie.ParseResults([]byte(html))
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "102623554", results[0].SongID)
	require.Equal(t, "첫사랑", results[0].Title)
	require.Equal(t, "정키", results[0].Artist)
	require.Equal(t, "88110467", results[1].SongID)
}

func TestBugsParseSearchResults(t *testing.T) {
	t.Parallel()

	html := `
<html><body>
<table class="trackList"><tbody>
  <tr>
    <td><p class="title"><a href="https://music.bugs.co.kr/track/6077818">밤편지</a></p></td>
    <td><p class="artist"><a href="#">아이유</a></p></td>
  </tr>
</tbody></table>
</body></html>`

	r := NewRegistry()
	bugs, _ := r.Searcher(collect.PlatformBugs)
	results, err := bugs.ParseResults([]byte(html))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "6077818", results[0].SongID)
	require.Equal(t, "밤편지", results[0].Title)
	require.Equal(t, "아이유", results[0].Artist)
}

func TestSearchURLEncodesQuery(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	genie, _ := r.Searcher(collect.PlatformGenie)
	require.Equal(t,
		"https://www.genie.co.kr/search/searchSong?query=%EC%B2%AB%EC%82%AC%EB%9E%91+%EC%A0%95%ED%82%A4",
		genie.SearchURL("첫사랑 정키"))
}
