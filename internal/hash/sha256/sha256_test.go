// Package sha256 includes tests for the content digest helpers.
package sha256

import "testing"

// TestDigestDeterministic ensures repeated hashing yields the same digest.
func TestDigestDeterministic(t *testing.T) {
	t.Parallel()

	got := Digest([]byte("hello world"))
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if again := Digest([]byte("hello world")); again != got {
		t.Fatalf("expected deterministic digest, got %s vs %s", got, again)
	}
}

// TestShortDigestIsPrefix checks the short form against the full digest.
func TestShortDigestIsPrefix(t *testing.T) {
	t.Parallel()

	full := Digest([]byte("<html></html>"))
	short := ShortDigest([]byte("<html></html>"))
	if len(short) != 12 {
		t.Fatalf("expected 12 characters, got %d", len(short))
	}
	if full[:12] != short {
		t.Fatalf("expected prefix of %s, got %s", full, short)
	}
}
