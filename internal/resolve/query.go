// Package resolve discovers platform song identifiers from human-entered
// song metadata via an ordered, degrading sequence of search attempts.
package resolve

import (
	"regexp"
	"strings"
)

// Marker tokens that platforms index inconsistently: soundtrack labels,
// part/volume numbering, ordinal release tags.
var markerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*\(original (motion picture |television )?soundtrack\)`),
	regexp.MustCompile(`(?i)\s*original (motion picture |television )?soundtrack`),
	regexp.MustCompile(`(?i)\s*O\.S\.T\.?`),
	regexp.MustCompile(`(?i)\s*\bOST\b`),
	regexp.MustCompile(`(?i)\s*(part|pt)\.?\s*\d+`),
	regexp.MustCompile(`(?i)\s*vol\.?\s*\d+`),
	regexp.MustCompile(`(?i)\s*\d+(st|nd|rd|th)\b`),
}

var (
	featPattern          = regexp.MustCompile(`(?i)\s*\(?\s*f(ea)?t\.?\s+[^)]*\)?`)
	// Greedy across the whole span so nested brackets ("민니 ((여자)아이들)")
	// drop cleanly.
	parentheticalPattern = regexp.MustCompile(`\s*[(（].*[)）]`)
	// Keeps letters, digits, Hangul and whitespace; drops every other symbol.
	nonScriptPattern = regexp.MustCompile(`[^a-zA-Z0-9\s\x{AC00}-\x{D7A3}]`)
)

// stripMarkers removes soundtrack and numbering tokens from a title or album.
func stripMarkers(text string) string {
	for _, p := range markerPatterns {
		text = p.ReplaceAllString(text, "")
	}
	return collapseSpaces(text)
}

// stripFeaturing cuts featured-artist suffixes and keeps the first artist of
// a comma-separated collaboration.
func stripFeaturing(artist string) string {
	artist = featPattern.ReplaceAllString(artist, "")
	if idx := strings.Index(artist, ","); idx >= 0 {
		artist = artist[:idx]
	}
	return collapseSpaces(artist)
}

// stripParenthetical drops bracketed qualifiers: "Name (Alias)" -> "Name".
func stripParenthetical(text string) string {
	return collapseSpaces(parentheticalPattern.ReplaceAllString(text, ""))
}

// stripNonScript removes every character that is not a letter, digit,
// Hangul syllable or space.
func stripNonScript(text string) string {
	return collapseSpaces(nonScriptPattern.ReplaceAllString(text, ""))
}

// buildQuery joins non-empty parts with single spaces. Ampersands split
// joint artist credits that search surfaces reject.
func buildQuery(parts ...string) string {
	var kept []string
	for _, p := range parts {
		p = collapseSpaces(strings.ReplaceAll(p, "&", " "))
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func collapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// normalizeForMatch lowercases and strips symbols so that query and result
// compare on content, not punctuation.
func normalizeForMatch(title, artist string) string {
	return strings.ToLower(collapseSpaces(stripNonScript(title) + " " + stripNonScript(artist)))
}
