// Package htmlextract implements the five-state character scanner that
// pulls <a href="..."> targets out of an HTML (or HTML-fragment) document.
//
// The scanner is deliberately not a real HTML parser: it must tolerate
// malformed or partial markup, including HTML blocks embedded inside a
// Markdown document, which a conforming parser would reject or normalize
// away.
package htmlextract

import (
	"net/url"

	"mlc/internal/linkkind"
	"mlc/internal/pipeline"
)

type state int

const (
	stateText state = iota
	stateComment
	stateAnchor
	stateEqualSign
	stateLink
)

// Find scans text for <a href="..."> links, reporting each one positioned at
// the start of its enclosing <a tag. isLineIgnored, when non-nil, is
// consulted with the anchor's 1-indexed line; a link whose anchor line is
// ignored is not emitted. Links classified as FileSystem are percent-decoded
// before being returned.
func Find(text string, isLineIgnored func(line int) bool) []pipeline.MarkupLink {
	var result []pipeline.MarkupLink

	st := stateText
	linkLine, linkColumn := 0, 0

	lines := splitLines(text)
	for lineIdx, lineStr := range lines {
		chars := []rune(lineStr)
		column := 0

		for column < len(chars) {
			switch st {
			case stateComment:
				if len(chars) >= column+3 && chars[column] == '-' && chars[column+1] == '-' && chars[column+2] == '>' {
					column += 2
					st = stateText
				}
			case stateText:
				linkColumn = column
				linkLine = lineIdx
				if match(chars, column, "<!--") {
					column += 3
					st = stateComment
				} else if match(chars, column, "<a") {
					column += 1
					st = stateAnchor
				}
			case stateAnchor:
				if match(chars, column, "href") {
					column += 3
					st = stateEqualSign
				}
			case stateEqualSign:
				switch {
				case column < len(chars) && isSpace(chars[column]):
				case column < len(chars) && chars[column] == '=':
					st = stateLink
				default:
					st = stateAnchor
				}
			case stateLink:
				if column < len(chars) && !isSpace(chars[column]) && chars[column] != '"' {
					start := column
					for column < len(chars) && !isSpace(chars[column]) && chars[column] != '"' {
						column++
					}
					for column < len(chars) && chars[column] != '"' {
						column++
					}
					target := string(chars[start:column])
					if linkkind.Classify(target) == pipeline.LinkFileSystem {
						if decoded, err := url.PathUnescape(target); err == nil {
							target = decoded
						}
					}
					if isLineIgnored == nil || !isLineIgnored(linkLine+1) {
						result = append(result, pipeline.MarkupLink{
							Target: target,
							Line:   linkLine + 1,
							Column: linkColumn + 1,
						})
					}
					st = stateText
				}
			}
			column++
		}
	}

	return result
}

func match(chars []rune, at int, want string) bool {
	wr := []rune(want)
	if at+len(wr) > len(chars) {
		return false
	}
	for i, r := range wr {
		if chars[at+i] != r {
			return false
		}
	}
	return true
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	default:
		return false
	}
}

// splitLines splits text on "\n" the same way the original line-by-line
// scanner does. A trailing "\r" of CRLF input stays on its line; it is
// whitespace to the state machine.
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	lines = append(lines, text[start:])
	return lines
}
