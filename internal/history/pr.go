package history

import (
	"regexp"

	"culprit/pkg/models"
)

// prRule pairs a message pattern with the pull-request host it implies.
type prRule struct {
	re     *regexp.Regexp
	source models.PRSource
}

// prRules are tried in fixed priority order; the first match wins. Explicit
// merge markers beat parenthesized references, which beat bare ones.
var prRules = []prRule{
	{regexp.MustCompile(`Merge pull request #(\d+)`), models.PRSourceGitHub},
	{regexp.MustCompile(`\(#(\d+)\)`), models.PRSourceGitHub},
	{regexp.MustCompile(`\(PR (\d+)\)`), models.PRSourceAzure},
	{regexp.MustCompile(`#(\d+)`), models.PRSourceGitHub},
	{regexp.MustCompile(`\bPR (\d+)`), models.PRSourceAzure},
}

// ExtractPR scans a commit message for a pull-request reference. Returns
// false when no rule matches.
func ExtractPR(message string) (number string, source models.PRSource, ok bool) {
	for _, rule := range prRules {
		if m := rule.re.FindStringSubmatch(message); m != nil {
			return m[1], rule.source, true
		}
	}
	return "", "", false
}
