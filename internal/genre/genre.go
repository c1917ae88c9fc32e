// Package genre normalizes book genres from catalog metadata.
//
// Google Books reports categories as slash-separated paths like
// "Fiction / Science Fiction / Space Opera" with inconsistent casing and
// vendor-specific buckets. Canonical folds those into a small set of
// display genres so shelves and dashboard distributions stay comparable
// across books added from different sources.
package genre

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any non-alphanumeric character.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a URL-safe slug.
// "Science Fiction" -> "science-fiction".
// "Biography & Autobiography" -> "biography-autobiography".
func Slugify(s string) string {
	// Normalize unicode (decompose accented characters).
	s = norm.NFKD.String(s)

	// Remove non-ASCII characters.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// displayNames maps category slugs to canonical display genres. Keys
// cover both Google Books top-level categories and common subgenre
// spellings users type by hand.
var displayNames = map[string]string{
	"fiction":            "Fiction",
	"literary-fiction":   "Fiction",
	"literary-criticism": "Fiction",
	"classics":           "Classics",

	"science-fiction": "Science Fiction",
	"sci-fi":          "Science Fiction",
	"scifi":           "Science Fiction",
	"space-opera":     "Science Fiction",
	"cyberpunk":       "Science Fiction",
	"dystopian":       "Science Fiction",

	"fantasy":       "Fantasy",
	"epic-fantasy":  "Fantasy",
	"urban-fantasy": "Fantasy",
	"magic":         "Fantasy",

	"mystery":                "Mystery & Thriller",
	"mystery-detective":      "Mystery & Thriller",
	"thrillers":              "Mystery & Thriller",
	"thriller":               "Mystery & Thriller",
	"suspense":               "Mystery & Thriller",
	"crime":                  "Mystery & Thriller",
	"true-crime":             "True Crime",
	"psychological-thriller": "Mystery & Thriller",

	"romance":              "Romance",
	"contemporary-romance": "Romance",
	"historical-romance":   "Romance",

	"horror":       "Horror",
	"ghost":        "Horror",
	"supernatural": "Horror",

	"historical-fiction": "Historical Fiction",
	"historical":         "Historical Fiction",

	"juvenile-fiction":    "Young Adult",
	"young-adult-fiction": "Young Adult",
	"young-adult":         "Young Adult",
	"ya":                  "Young Adult",

	"comics-graphic-novels": "Comics & Graphic Novels",
	"graphic-novels":        "Comics & Graphic Novels",
	"manga":                 "Comics & Graphic Novels",

	"poetry": "Poetry",
	"drama":  "Drama",

	"biography-autobiography": "Biography & Memoir",
	"biography":               "Biography & Memoir",
	"memoir":                  "Biography & Memoir",
	"autobiography":           "Biography & Memoir",

	"history":             "History",
	"philosophy":          "Philosophy",
	"psychology":          "Psychology",
	"self-help":           "Self-Help",
	"personal-growth":     "Self-Help",
	"business-economics":  "Business",
	"business":            "Business",
	"economics":           "Business",
	"computers":           "Technology",
	"technology":          "Technology",
	"science":             "Science",
	"nature":              "Science",
	"mathematics":         "Science",
	"religion":            "Religion & Spirituality",
	"spirituality":        "Religion & Spirituality",
	"body-mind-spirit":    "Religion & Spirituality",
	"cooking":             "Cooking",
	"travel":              "Travel",
	"health-fitness":      "Health & Fitness",
	"sports-recreation":   "Sports",
	"political-science":   "Politics",
	"social-science":      "Social Science",
	"education":           "Education",
	"art":                 "Art & Design",
	"design":              "Art & Design",
	"music":               "Music",
	"humor":               "Humor",
	"nonfiction":          "Nonfiction",
	"non-fiction":         "Nonfiction",
	"general-nonfiction":  "Nonfiction",
}

// Canonical folds a raw catalog category into a display genre.
//
// Category paths are walked from the most specific segment to the least,
// and the first recognized segment wins. Unrecognized categories come
// back trimmed but otherwise untouched, so hand-typed genres survive.
func Canonical(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	segments := strings.Split(raw, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if name, ok := displayNames[Slugify(segments[i])]; ok {
			return name
		}
	}

	return strings.TrimSpace(segments[len(segments)-1])
}
