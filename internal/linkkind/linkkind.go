// Package linkkind classifies a raw link target string into a
// pipeline.LinkKind, deciding which validator will eventually handle it.
package linkkind

import (
	"net/url"
	"regexp"
	"strings"

	"mlc/internal/pipeline"
)

// fileSystemPattern matches Windows drive letters (C:\, F:/), relative
// prefixes (./, ../, .\, ..\), and UNC/root-relative prefixes (\\, //, \, /)
// — anything that looks like a filesystem path rather than a URI scheme.
var fileSystemPattern = regexp.MustCompile(`^(([[:alpha:]]:(\\|/))|(\.\.?(\\|/))|((\\\\?|//?))).*`)

// Classify determines the LinkKind of a raw link target exactly as
// spec.md's link classifier mandates: a filesystem-prefix check (or the
// absence of any colon at all) takes priority over URL-scheme dispatch.
func Classify(target string) pipeline.LinkKind {
	if fileSystemPattern.MatchString(target) || !strings.Contains(target, ":") {
		if strings.Contains(target, "@") {
			return pipeline.LinkMail
		}
		return pipeline.LinkFileSystem
	}

	u, err := url.Parse(target)
	if err != nil {
		return pipeline.LinkUnknownScheme
	}

	switch u.Scheme {
	case "http", "https":
		return pipeline.LinkHTTP
	case "ftp", "ftps":
		return pipeline.LinkFTP
	case "mailto":
		return pipeline.LinkMail
	case "file":
		return pipeline.LinkFileSystem
	default:
		return pipeline.LinkUnknownScheme
	}
}
