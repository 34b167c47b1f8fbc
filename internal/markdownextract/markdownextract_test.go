package markdownextract

import (
	"testing"

	"mlc/internal/pipeline"
)

func noIgnore(int) bool { return false }

func findLinks(t *testing.T, src string) []pipeline.MarkupLink {
	t.Helper()
	return Find(src, noIgnore, false).Links
}

func findBroken(t *testing.T, src string) []pipeline.BrokenExtractedLink {
	t.Helper()
	return Find(src, noIgnore, false).Broken
}

func TestInlineNoLink(t *testing.T) {
	links := findLinks(t, "this line has no [link]")
	if len(links) != 0 {
		t.Fatalf("got %v, want none", links)
	}
}

func TestCommentedLinkIsSkipped(t *testing.T) {
	links := findLinks(t, "<!-- [link](https://example.com) -->")
	if len(links) != 0 {
		t.Fatalf("got %v, want none", links)
	}
}

func TestLinkEscapedIsNotALink(t *testing.T) {
	links := findLinks(t, `\[not a link\](https://example.com)`)
	if len(links) != 0 {
		t.Fatalf("got %v, want none", links)
	}
}

func TestNestedLinks(t *testing.T) {
	// The outer link's Start event precedes the nested image's, matching
	// document order: the opening "[" of the outer link comes first.
	links := findLinks(t, "[![](inner.png)](outer.html)")
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2: %v", len(links), links)
	}
	if links[0].Target != "outer.html" {
		t.Errorf("links[0].Target = %q, want outer.html", links[0].Target)
	}
	if links[0].Column != 1 {
		t.Errorf("links[0].Column = %d, want 1 (outer anchor at line start)", links[0].Column)
	}
	if links[1].Target != "inner.png" {
		t.Errorf("links[1].Target = %q, want inner.png", links[1].Target)
	}
}

func TestLinkInHeadline(t *testing.T) {
	links := findLinks(t, "# A [link](https://example.com) in a headline")
	if len(links) != 1 || links[0].Target != "https://example.com" {
		t.Fatalf("got %v, want one link to https://example.com", links)
	}
	if links[0].Line != 1 {
		t.Errorf("Line = %d, want 1", links[0].Line)
	}
}

func TestNoLinkColon(t *testing.T) {
	links := findLinks(t, "this has a colon: but no link")
	if len(links) != 0 {
		t.Fatalf("got %v, want none", links)
	}
}

func TestInlineCodeIsNotALink(t *testing.T) {
	links := findLinks(t, "`[link](https://example.com)`")
	if len(links) != 0 {
		t.Fatalf("got %v, want none", links)
	}
}

func TestLinkNearInlineCode(t *testing.T) {
	links := findLinks(t, "`code` [link](https://example.com)")
	if len(links) != 1 || links[0].Target != "https://example.com" {
		t.Fatalf("got %v", links)
	}
}

func TestLinkVeryNearInlineCode(t *testing.T) {
	links := findLinks(t, "`code`[link](https://example.com)")
	if len(links) != 1 || links[0].Target != "https://example.com" {
		t.Fatalf("got %v", links)
	}
}

func TestCodeBlockIsNotScanned(t *testing.T) {
	src := "```\n[link](https://example.com)\n```"
	links := findLinks(t, src)
	if len(links) != 0 {
		t.Fatalf("got %v, want none", links)
	}
}

func TestHTMLCodeBlockInFence(t *testing.T) {
	src := "```html\n<a href=\"https://example.com\">x</a>\n```"
	links := findLinks(t, src)
	if len(links) != 0 {
		t.Fatalf("got %v, want none (fenced block is not HTML-walked)", links)
	}
}

func TestEscapedCodeBlockIsNotScanned(t *testing.T) {
	src := "~~~\n[link](https://example.com)\n~~~"
	links := findLinks(t, src)
	if len(links) != 0 {
		t.Fatalf("got %v, want none", links)
	}
}

func TestLinkInCodeBlockViaRawScan(t *testing.T) {
	src := "```\nhttps://example.com/raw\n```"
	result := Find(src, noIgnore, true)
	if len(result.Links) != 1 || result.Links[0].Target != "https://example.com/raw" {
		t.Fatalf("got %v, want raw link reported", result.Links)
	}
}

func TestImageReference(t *testing.T) {
	links := findLinks(t, "![alt](image.png)")
	if len(links) != 1 || links[0].Target != "image.png" {
		t.Fatalf("got %v", links)
	}
}

func TestLinkNoTitle(t *testing.T) {
	links := findLinks(t, "[text](https://example.com)")
	if len(links) != 1 || links[0].Target != "https://example.com" {
		t.Fatalf("got %v", links)
	}
}

func TestLinkWithTitle(t *testing.T) {
	links := findLinks(t, `[text](https://example.com "a title")`)
	if len(links) != 1 || links[0].Target != "https://example.com" {
		t.Fatalf("got %v", links)
	}
}

func TestInlineAutolinkHTTP(t *testing.T) {
	links := findLinks(t, "<https://example.com>")
	if len(links) != 1 || links[0].Target != "https://example.com" {
		t.Fatalf("got %v", links)
	}
}

func TestInlineAutolinkMail(t *testing.T) {
	links := findLinks(t, "<foo@example.com>")
	if len(links) != 1 || links[0].Target != "mailto:foo@example.com" {
		t.Fatalf("got %v, want mailto:foo@example.com", links)
	}
}

func TestHTMLLinkEmbeddedInMarkdown(t *testing.T) {
	src := `<a href="https://example.com">html link</a>`
	links := findLinks(t, src)
	if len(links) != 1 || links[0].Target != "https://example.com" {
		t.Fatalf("got %v", links)
	}
	if links[0].Line != 1 || links[0].Column != 1 {
		t.Errorf("position = %d:%d, want 1:1", links[0].Line, links[0].Column)
	}
}

func TestHTMLLinkIdentInParagraph(t *testing.T) {
	src := "some text\n<a href=\"https://example.com\">html link</a>\nmore text"
	links := findLinks(t, src)
	if len(links) != 1 || links[0].Target != "https://example.com" {
		t.Fatalf("got %v", links)
	}
	if links[0].Line != 2 {
		t.Errorf("Line = %d, want 2", links[0].Line)
	}
}

func TestHTMLLinkNewLine(t *testing.T) {
	src := "<a\nhref=\"https://example.com\">html link</a>"
	links := findLinks(t, src)
	if len(links) != 1 || links[0].Target != "https://example.com" {
		t.Fatalf("got %v", links)
	}
}

func TestRawHTMLIssue31(t *testing.T) {
	src := "Text with inline <a href=\"https://example.com\">link</a> and more text."
	links := findLinks(t, src)
	if len(links) != 1 || links[0].Target != "https://example.com" {
		t.Fatalf("got %v", links)
	}
}

func TestReferencedLink(t *testing.T) {
	src := "[text][ref]\n\n[ref]: https://example.com"
	links := findLinks(t, src)
	if len(links) != 1 || links[0].Target != "https://example.com" {
		t.Fatalf("got %v", links)
	}
	broken := findBroken(t, src)
	if len(broken) != 0 {
		t.Fatalf("got broken %v, want none", broken)
	}
}

func TestReferencedLinkTagOnly(t *testing.T) {
	src := "[ref]\n\n[ref]: https://example.com"
	links := findLinks(t, src)
	if len(links) != 1 || links[0].Target != "https://example.com" {
		t.Fatalf("got %v", links)
	}
}

func TestReferencedLinkNoTagOnly(t *testing.T) {
	src := "[ref][]\n\n[ref]: https://example.com"
	links := findLinks(t, src)
	if len(links) != 1 || links[0].Target != "https://example.com" {
		t.Fatalf("got %v", links)
	}
}

func TestBrokenReferenceLink(t *testing.T) {
	src := "this is a [broken][reference] link"
	broken := findBroken(t, src)
	if len(broken) != 1 {
		t.Fatalf("got %v, want one broken reference", broken)
	}
	if broken[0].Reference != "broken" {
		t.Errorf("Reference = %q, want %q", broken[0].Reference, "broken")
	}
}

func TestBrokenReferenceLinkSuppressedWhenIgnored(t *testing.T) {
	src := "this is a [broken][reference] link"
	result := Find(src, func(line int) bool { return line == 1 }, false)
	if len(result.Broken) != 0 {
		t.Fatalf("got %v, want suppressed", result.Broken)
	}
}

func TestInlineLinkFollowedByParenIsNotBrokenReference(t *testing.T) {
	src := "[text](https://example.com)"
	broken := findBroken(t, src)
	if len(broken) != 0 {
		t.Fatalf("got %v, want none", broken)
	}
}

// A resolved reference usage earlier in the text must not swallow a later,
// genuinely broken reference on the strength of its destination's length: the
// destination lives in a separate "[label]: url" definition and has no
// bearing on how many source bytes the usage itself occupies.
func TestBrokenReferenceNotHiddenByPrecedingLongDestination(t *testing.T) {
	src := "[good][label] and [bad][missing]\n\n" +
		"[label]: https://example.com/very/long/path/that/is/quite/extended/indeed"
	broken := findBroken(t, src)
	if len(broken) != 1 {
		t.Fatalf("got %v, want exactly one broken reference", broken)
	}
	if broken[0].Reference != "bad" {
		t.Errorf("Reference = %q, want %q", broken[0].Reference, "bad")
	}
}
