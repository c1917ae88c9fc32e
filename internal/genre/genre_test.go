package genre

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Science Fiction", "science-fiction"},
		{"Biography & Autobiography", "biography-autobiography"},
		{"Sci-Fi/Fantasy", "sci-fi-fantasy"},
		{"Café Culture", "cafe-culture"},
		{"  --weird--  ", "weird"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Fiction", "Fiction"},
		{"Fiction / Science Fiction / Space Opera", "Science Fiction"},
		{"JUVENILE FICTION", "Young Adult"},
		{"Biography & Autobiography", "Biography & Memoir"},
		{"Sci-Fi", "Science Fiction"},
		{"Business & Economics", "Business"},
		{"Comics & Graphic Novels / Manga", "Comics & Graphic Novels"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonical(tt.in), "Canonical(%q)", tt.in)
	}
}

func TestCanonicalKeepsUnknownGenres(t *testing.T) {
	assert.Equal(t, "Solarpunk", Canonical("Solarpunk"))

	// Unknown subgenres fall back to a recognized parent category.
	assert.Equal(t, "Fiction", Canonical("Fiction / Westerns / Weird West"))
}
