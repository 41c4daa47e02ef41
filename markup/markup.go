package markup

import (
	"regexp"
	"strings"
)

// Normalizers for the HTML and text fields the listing API returns. These are
// deterministic string transforms, not parsers.

// ExcerptLimit is the default running-length cutoff for card descriptions.
const ExcerptLimit = 120

var sentenceEnd = regexp.MustCompile(`[.?!]\s`)

// splitSentences splits text into sentence segments with each delimiter kept
// as its own segment, so segments alternate text, delimiter, text, ...
func splitSentences(text string) []string {
	locs := sentenceEnd.FindAllStringIndex(text, -1)
	segments := make([]string, 0, 2*len(locs)+1)
	prev := 0
	for _, loc := range locs {
		segments = append(segments, text[prev:loc[0]], text[loc[0]:loc[1]])
		prev = loc[1]
	}
	// The tail is always a segment, even when empty: the even/odd rule below
	// counts it.
	return append(segments, text[prev:])
}

// Excerpt shortens text to roughly limit characters without cutting
// mid-sentence. Segments accumulate while the running length is under the
// limit; when the last accumulated segment sits at an even index (a text
// segment), the following delimiter segment is appended too, so the excerpt
// ends on a sentence boundary. Anything from a literal "===" marker on is
// dropped, unless the marker is the very first thing in the excerpt.
func Excerpt(text string, limit int) string {
	segments := splitSentences(text)

	var b strings.Builder
	last := -1
	for d, seg := range segments {
		if b.Len() < limit {
			b.WriteString(seg)
			if len(seg) == 1 {
				b.WriteString(" ")
			}
			last = d
		}
	}

	built := b.String()
	if last%2 == 0 {
		if e := last + 1; e < len(segments) {
			built += segments[e]
		}
	}

	if i := strings.Index(built, "==="); i > 0 {
		built = built[:i]
	}

	return strings.TrimSpace(built)
}

// htmlFixes is applied in order, each pair exactly once. Order matters: the
// uppercase "<P>===</P>" divider has to become "<hr />" before the bare
// "<hr>" rewrite runs.
var htmlFixes = []struct {
	ugly string
	good string
}{
	{"<SPAN>", ""},
	{"</SPAN>", ""},
	{"<P>===</P>", "<hr />"},
	{"<BR>", "<br />"},
	{"&nbsp;", " "},
	{"<hr>", "<hr />"},
	{"STRONG>", "strong>"},
}

// FixHTML cleans up the malformed fragments the upstream editor produces:
// uppercase tags, unclosed void tags, literal non-breaking spaces.
func FixHTML(html string) string {
	fixed := html
	for _, f := range htmlFixes {
		fixed = strings.ReplaceAll(fixed, f.ugly, f.good)
	}
	return strings.TrimSpace(fixed)
}

var schemaTextReplacer = strings.NewReplacer(
	"\n", " ",
	"\r", " ",
	" ", " ",
)

// SchemaText flattens a description for embedding in structured data:
// newlines and non-breaking spaces become plain spaces.
func SchemaText(text string) string {
	return strings.TrimSpace(schemaTextReplacer.Replace(text))
}
