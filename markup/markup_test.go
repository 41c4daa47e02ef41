package markup

import (
	"strings"
	"testing"
)

func TestExcerpt(t *testing.T) {
	t.Parallel()

	t.Run("short text comes back unchanged", func(t *testing.T) {
		text := "Just one short sentence."
		if got := Excerpt(text, ExcerptLimit); got != text {
			t.Fatalf("expected %q, got %q", text, got)
		}
	})

	t.Run("idempotent under re-excerpting", func(t *testing.T) {
		text := "First thing. Second thing. Third thing."
		once := Excerpt(text, ExcerptLimit)
		twice := Excerpt(once, ExcerptLimit)
		if once != twice {
			t.Fatalf("re-excerpt changed output: %q vs %q", once, twice)
		}
	})

	t.Run("ends on a sentence boundary past the limit", func(t *testing.T) {
		a := strings.Repeat("a", 70)
		b := strings.Repeat("b", 80)
		c := strings.Repeat("c", 10)
		text := a + ". " + b + ". " + c + "."

		want := a + ". " + b + "."
		if got := Excerpt(text, 120); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})

	t.Run("no trailing segment when the last kept piece is a delimiter", func(t *testing.T) {
		a := strings.Repeat("a", 70)
		text := a + ". " + strings.Repeat("b", 80) + "."

		// Limit crossed right after the delimiter: index 1 is odd, so
		// nothing more is appended.
		want := a + "."
		if got := Excerpt(text, 71); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})

	t.Run("truncates at the divider marker", func(t *testing.T) {
		text := "Intro sentence. === Everything after the divider."
		want := "Intro sentence."
		if got := Excerpt(text, ExcerptLimit); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})

	t.Run("divider at position zero is left alone", func(t *testing.T) {
		text := "=== starts with divider."
		if got := Excerpt(text, ExcerptLimit); got != text {
			t.Fatalf("expected %q, got %q", text, got)
		}
	})
}

func TestFixHTML(t *testing.T) {
	t.Parallel()

	t.Run("full replacement table", func(t *testing.T) {
		in := "<SPAN>Hello</SPAN>&nbsp;<P>===</P><BR>More<hr><STRONG>bold</STRONG>"
		want := "Hello <hr /><br />More<hr /><strong>bold</strong>"
		if got := FixHTML(in); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})

	t.Run("divider paragraph becomes a rule before bare hr rewrite", func(t *testing.T) {
		if got := FixHTML("<P>===</P>"); got != "<hr />" {
			t.Fatalf("expected %q, got %q", "<hr />", got)
		}
	})

	t.Run("already clean markup passes through trimmed", func(t *testing.T) {
		if got := FixHTML("  <p>fine as is</p>\n"); got != "<p>fine as is</p>" {
			t.Fatalf("got %q", got)
		}
	})
}

func TestSchemaText(t *testing.T) {
	t.Parallel()

	in := "a\nb\rc d "
	want := "a b c d"
	if got := SchemaText(in); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
