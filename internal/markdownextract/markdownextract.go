// Package markdownextract extracts hyperlinks from Markdown documents using
// a goldmark CommonMark parse tree, delegating any embedded raw HTML to
// internal/htmlextract and reporting reference-style links with no matching
// definition as broken.
package markdownextract

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	gmtext "github.com/yuin/goldmark/text"

	"mlc/internal/htmlextract"
	"mlc/internal/pipeline"
)

var md = goldmark.New()

// Result holds everything Find extracted from one document.
type Result struct {
	Links  []pipeline.MarkupLink
	Broken []pipeline.BrokenExtractedLink
}

// Find parses src as CommonMark and returns every link/image/autolink
// destination plus any broken reference-style usage, honoring
// isLineIgnored exactly as the HTML extractor does. When
// scanRawLinksInCode is true, bare http(s) URLs inside fenced code blocks
// are additionally reported (the disable_raw_link_check opt-out).
func Find(src string, isLineIgnored func(line int) bool, scanRawLinksInCode bool) Result {
	source := []byte(src)
	lc := newLineColumnConverter(source)

	e := &extractor{
		source:        source,
		lc:            lc,
		isLineIgnored: isLineIgnored,
	}

	reader := gmtext.NewReader(source)
	pc := parser.NewContext()
	doc := md.Parser().Parse(reader, parser.WithContext(pc))

	_ = ast.Walk(doc, e.visit)

	result := Result{Links: e.links, Broken: findBrokenReferences(source, lc, e.consumed, isLineIgnored)}

	if scanRawLinksInCode {
		result.Links = append(result.Links, findRawLinksInCode(source, lc, isLineIgnored)...)
	}

	return result
}

type byteRange struct{ start, stop int }

type extractor struct {
	source        []byte
	lc            *lineColumnConverter
	isLineIgnored func(int) bool
	cursor        int
	links         []pipeline.MarkupLink
	consumed      []byteRange
}

func (e *extractor) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	switch n.Kind() {
	case ast.KindText:
		t := n.(*ast.Text)
		if t.Segment.Stop > e.cursor {
			e.cursor = t.Segment.Stop
		}
	case ast.KindAutoLink:
		al := n.(*ast.AutoLink)
		anchor := e.findFrom("<")
		e.cursor = anchor + 1
		target := string(al.URL(e.source))
		if al.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(target), "mailto:") {
			target = "mailto:" + target
		}
		e.emit(anchor, anchor, target)
	case ast.KindImage:
		img := n.(*ast.Image)
		anchor := e.findFrom("![")
		e.cursor = anchor + 2
		e.emit(anchor, consumedEnd(e.source, anchor+1), string(img.Destination))
	case ast.KindLink:
		l := n.(*ast.Link)
		anchor := e.findFrom("[")
		e.cursor = anchor + 1
		e.emit(anchor, consumedEnd(e.source, anchor), string(l.Destination))
	case ast.KindHTMLBlock:
		b := n.(*ast.HTMLBlock)
		e.forwardHTML(blockLinesText(b, e.source), blockLinesStart(b))
	case ast.KindRawHTML:
		r := n.(*ast.RawHTML)
		e.forwardHTML(segmentsText(r.Segments, e.source), segmentsStart(r.Segments))
	}

	return ast.WalkContinue, nil
}

func (e *extractor) emit(anchor, consumedEnd int, target string) {
	e.consumed = append(e.consumed, byteRange{anchor, consumedEnd})
	line, col := e.lc.at(anchor)
	if e.isLineIgnored != nil && e.isLineIgnored(line) {
		return
	}
	e.links = append(e.links, pipeline.MarkupLink{Target: target, Line: line, Column: col})
}

// forwardHTML relocates links found by the HTML extractor in an embedded
// fragment to the enclosing document's coordinates, per spec.md 4.E: the
// column offset only applies to the fragment's first line.
func (e *extractor) forwardHTML(fragment string, fragmentStart int) {
	if fragmentStart > e.cursor {
		e.cursor = fragmentStart
	}
	fragLine, fragCol := e.lc.at(fragmentStart)

	for _, sub := range htmlextract.Find(fragment, nil) {
		line := fragLine + sub.Line - 1
		col := sub.Column
		if sub.Line == 1 {
			col = fragCol + sub.Column - 1
		}
		if e.isLineIgnored != nil && e.isLineIgnored(line) {
			continue
		}
		e.links = append(e.links, pipeline.MarkupLink{Target: sub.Target, Line: line, Column: col})
	}

	e.cursor = fragmentStart + len(fragment)
}

// consumedEnd returns the byte offset just past the link construct opening
// at bracketStart (the index of its leading "["), following the label to
// its closing "]" and then, for an inline "(destination)" or a full
// "[label]" reference, to the matching closing delimiter. Unlike a length
// derived from the resolved destination, this tracks the construct's actual
// span in source -- a reference usage's destination lives in a separate
// "[label]: url" definition and has no bearing on how many source bytes the
// usage itself occupies.
func consumedEnd(source []byte, bracketStart int) int {
	closeLabel := matchBracket(source, bracketStart, '[', ']')
	if closeLabel < 0 {
		return bracketStart + 1
	}
	end := closeLabel + 1
	if end < len(source) {
		switch source[end] {
		case '(':
			if closeDest := matchBracket(source, end, '(', ')'); closeDest >= 0 {
				return closeDest + 1
			}
		case '[':
			if closeRef := matchBracket(source, end, '[', ']'); closeRef >= 0 {
				return closeRef + 1
			}
		}
	}
	return end
}

// matchBracket returns the index of the close byte matching the open byte
// at openIdx, honoring nesting and backslash-escapes, or -1 if unmatched.
func matchBracket(source []byte, openIdx int, open, close byte) int {
	depth := 0
	for i := openIdx; i < len(source); i++ {
		c := source[i]
		if c == '\\' && i+1 < len(source) {
			i++
			continue
		}
		if c == open {
			depth++
		} else if c == close {
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (e *extractor) findFrom(marker string) int {
	idx := bytes.Index(e.source[e.cursor:], []byte(marker))
	if idx < 0 {
		return e.cursor
	}
	return e.cursor + idx
}

func blockLinesText(b *ast.HTMLBlock, source []byte) string {
	return segmentsText(b.Lines(), source)
}

func blockLinesStart(b *ast.HTMLBlock) int {
	return segmentsStart(b.Lines())
}

func segmentsText(segs *gmtext.Segments, source []byte) string {
	if segs == nil || segs.Len() == 0 {
		return ""
	}
	var buf bytes.Buffer
	for i := 0; i < segs.Len(); i++ {
		buf.Write(segs.At(i).Value(source))
	}
	return buf.String()
}

func segmentsStart(segs *gmtext.Segments) int {
	if segs == nil || segs.Len() == 0 {
		return 0
	}
	return segs.At(0).Start
}

// lineColumnConverter maps a byte offset into source to a 1-indexed
// (line, column) pair, ported directly from the original extractor's
// LineColumnConverter. Columns count bytes, whereas the HTML extractor
// counts runes, so the two differ on lines holding multi-byte characters.
type lineColumnConverter struct {
	lineLengths []int
}

func newLineColumnConverter(source []byte) *lineColumnConverter {
	c := &lineColumnConverter{}
	current := 0
	for _, b := range source {
		current++
		if b == '\n' {
			c.lineLengths = append(c.lineLengths, current)
			current = 0
		}
	}
	return c
}

func (c *lineColumnConverter) at(offset int) (line, column int) {
	line = 1
	column = offset + 1
	for _, length := range c.lineLengths {
		if length >= column {
			return line, column
		}
		column -= length
		line++
	}
	return line, column
}

// referenceUsagePattern matches both full ([text][label]) and shortcut
// ([label]) reference syntax. Nested brackets are excluded from the label
// content, matching CommonMark's own restriction.
var referenceUsagePattern = regexp.MustCompile(`\[((?:[^\[\]\\]|\\.)*)\](\[((?:[^\[\]\\]|\\.)*)\])?`)

// referenceDefinitionPattern matches a line-leading reference definition:
// "[label]: destination", with up to 3 leading spaces of indentation.
var referenceDefinitionPattern = regexp.MustCompile(`(?m)^[ \t]{0,3}\[([^\]\n]+)\]:[ \t]*\S`)

func findBrokenReferences(source []byte, lc *lineColumnConverter, consumed []byteRange, isLineIgnored func(int) bool) []pipeline.BrokenExtractedLink {
	excluded := append([]byteRange{}, consumed...)
	excluded = append(excluded, excludedCodeAndCommentRanges(source)...)

	definitions := map[string]bool{}
	for _, m := range referenceDefinitionPattern.FindAllSubmatchIndex(source, -1) {
		label := normalizeLabel(string(source[m[2]:m[3]]))
		definitions[label] = true
		excluded = append(excluded, byteRange{m[0], m[1]})
	}
	sort.Slice(excluded, func(i, j int) bool { return excluded[i].start < excluded[j].start })

	var broken []pipeline.BrokenExtractedLink
	for _, m := range referenceUsagePattern.FindAllSubmatchIndex(source, -1) {
		start, end := m[0], m[1]
		if overlapsAny(excluded, start, end) {
			continue
		}
		if start > 0 && source[start-1] == '\\' {
			continue
		}
		if end < len(source) && source[end] == '(' {
			continue
		}

		text := string(source[m[2]:m[3]])
		label := text
		if m[4] >= 0 {
			if inner := string(source[m[6]:m[7]]); inner != "" {
				label = inner
			}
		}
		if definitions[normalizeLabel(label)] {
			continue
		}

		line, col := lc.at(start)
		if isLineIgnored != nil && isLineIgnored(line) {
			continue
		}
		broken = append(broken, pipeline.BrokenExtractedLink{
			Reference: text,
			Line:      line,
			Column:    col,
		})
	}
	return broken
}

func overlapsAny(ranges []byteRange, start, end int) bool {
	for _, r := range ranges {
		if start < r.stop && end > r.start {
			return true
		}
	}
	return false
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

var (
	inlineCodeSpanPattern = regexp.MustCompile("`+[^`\n]*?`+")
	htmlCommentPattern    = regexp.MustCompile(`(?s)<!--.*?-->`)
)

func excludedCodeAndCommentRanges(source []byte) []byteRange {
	var ranges []byteRange
	for _, r := range fencedBlockRanges(source) {
		ranges = append(ranges, r)
	}
	for _, loc := range inlineCodeSpanPattern.FindAllIndex(source, -1) {
		ranges = append(ranges, byteRange{loc[0], loc[1]})
	}
	for _, loc := range htmlCommentPattern.FindAllIndex(source, -1) {
		ranges = append(ranges, byteRange{loc[0], loc[1]})
	}
	return ranges
}

// fencedBlockRanges finds ``` / ~~~ delimited fenced code blocks by scanning
// line by line, avoiding the backreference support regexp/RE2 lacks.
func fencedBlockRanges(source []byte) []byteRange {
	var ranges []byteRange
	lines := bytes.Split(source, []byte("\n"))
	offset := 0
	openFence := ""
	openStart := -1
	for _, line := range lines {
		trimmed := bytes.TrimLeft(line, " \t")
		if openStart < 0 {
			if fence := fenceMarker(trimmed); fence != "" {
				openFence = fence
				openStart = offset
			}
		} else if fence := fenceMarker(trimmed); fence != "" && strings.HasPrefix(fence, string(openFence[0])) && len(fence) >= len(openFence) {
			ranges = append(ranges, byteRange{openStart, offset + len(line)})
			openStart = -1
			openFence = ""
		}
		offset += len(line) + 1
	}
	if openStart >= 0 {
		ranges = append(ranges, byteRange{openStart, len(source)})
	}
	return ranges
}

func fenceMarker(trimmed []byte) string {
	for _, marker := range []byte{'`', '~'} {
		n := 0
		for n < len(trimmed) && trimmed[n] == marker {
			n++
		}
		if n >= 3 {
			return string(trimmed[:n])
		}
	}
	return ""
}

// rawURLPattern matches bare http(s) URLs, used only for scanning fenced
// code blocks when disable_raw_link_check is not set.
var rawURLPattern = regexp.MustCompile(`https?://[^\s"'<>)\]` + "`" + `]+`)

func findRawLinksInCode(source []byte, lc *lineColumnConverter, isLineIgnored func(int) bool) []pipeline.MarkupLink {
	var links []pipeline.MarkupLink
	for _, block := range fencedBlockRanges(source) {
		body := source[block.start:block.stop]
		for _, loc := range rawURLPattern.FindAllIndex(body, -1) {
			start := block.start + loc[0]
			line, col := lc.at(start)
			if isLineIgnored != nil && isLineIgnored(line) {
				continue
			}
			links = append(links, pipeline.MarkupLink{
				Target: string(body[loc[0]:loc[1]]),
				Line:   line,
				Column: col,
			})
		}
	}
	return links
}
