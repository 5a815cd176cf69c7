package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripMarkers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"호텔 델루나 OST Part 1", "호텔 델루나"},
		{"Love Story (Original Soundtrack)", "Love Story"},
		{"사랑은 늘 도망가 O.S.T.", "사랑은 늘 도망가"},
		{"Greatest Hits Vol. 2", "Greatest Hits"},
		{"Memories Pt.3", "Memories"},
		{"2nd Mini Album", "Mini Album"},
		{"그대라는 시", "그대라는 시"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, stripMarkers(tc.in), "input %q", tc.in)
	}
}

func TestStripFeaturing(t *testing.T) {
	t.Parallel()

	require.Equal(t, "정키", stripFeaturing("정키 (Feat. 유미)"))
	require.Equal(t, "창모", stripFeaturing("창모 Feat. 비와이"))
	require.Equal(t, "최인희", stripFeaturing("최인희, 오혜주"))
	require.Equal(t, "아이유", stripFeaturing("아이유"))
}

func TestStripParenthetical(t *testing.T) {
	t.Parallel()

	require.Equal(t, "민니", stripParenthetical("민니 ((여자)아이들)"))
	require.Equal(t, "첫사랑", stripParenthetical("첫사랑 (From 응답하라 1994)"))
	require.Equal(t, "정키", stripParenthetical("정키 （정희웅）"))
}

func TestStripNonScript(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Dont Cry", stripNonScript("Don't Cry!"))
	require.Equal(t, "밤편지", stripNonScript("밤편지♡"))
	require.Equal(t, "QA", stripNonScript("Q&A"))
}

func TestBuildQuery(t *testing.T) {
	t.Parallel()

	require.Equal(t, "첫사랑 정키", buildQuery("첫사랑", "정키", ""))
	require.Equal(t, "최인희 오혜주", buildQuery("최인희&오혜주"))
	require.Equal(t, "", buildQuery("", "", ""))
}

func TestNormalizeForMatch(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		normalizeForMatch("첫사랑", "정키"),
		normalizeForMatch("첫사랑!", "  정키  "))
	require.Equal(t,
		normalizeForMatch("LOVE DIVE", "IVE"),
		normalizeForMatch("Love Dive", "ive"))
}
