package normalize

import (
	"context"

	"github.com/florista/bouquet-bff/pkg/logger"
)

const maxReportedIssues = 10

// Strings renders the issues for log fields.
func (is Issues) Strings() []string {
	out := make([]string, 0, len(is))
	for _, issue := range is {
		out = append(out, issue.String())
	}
	return out
}

// Report logs contract drift found while normalizing one upstream payload.
func Report(ctx context.Context, logg *logger.Logger, source string, issues Issues) {
	if logg == nil || len(issues) == 0 {
		return
	}
	sample := issues
	if len(sample) > maxReportedIssues {
		sample = sample[:maxReportedIssues]
	}
	ctx = logg.WithFields(ctx, map[string]any{
		"source":      source,
		"issue_count": len(issues),
		"issues":      sample.Strings(),
	})
	logg.Warn(ctx, "upstream payload normalized with issues")
}
