package validate

import (
	"regexp"
	"strings"

	"mlc/internal/pipeline"
)

// emailPattern is a direct port of the original mail validator's regex: a
// restrictive local-part character class, then a domain of dot/hyphen
// separated labels ending in a 2-6 letter TLD.
var emailPattern = regexp.MustCompile(
	`(?i)^([a-z0-9_!#$%&'*+-/=?^` + "`" + `{|}~+]([a-z0-9_!#$%&'*+-/=?^` + "`" + `{|}~+.]*[a-z0-9_!#$%&'*+-/=?^_{|}~+])?)@([a-z0-9]+([\-.]{1}[a-z0-9]+)*\.[a-z]{2,6})`,
)

// Mail validates a mailto target against emailPattern after stripping the
// mailto:// or mailto: prefix, if present.
func Mail(target string) pipeline.CheckOutcome {
	mail := target
	switch {
	case strings.HasPrefix(target, "mailto://"):
		mail = strings.TrimPrefix(target, "mailto://")
	case strings.HasPrefix(target, "mailto:"):
		mail = strings.TrimPrefix(target, "mailto:")
	}

	if emailPattern.MatchString(mail) {
		return pipeline.OutcomeOK()
	}
	return pipeline.OutcomeFailed("Not a valid mail address.")
}
