package present

import (
	"fmt"
	"io"
	"strings"

	"lunchgenie/internal/agent"
)

const (
	header          = "Recommended team lunch places (clean reviews, high rating, short walk):"
	allRejectedText = "All matched places have review red flags or could not be verified as safe."
	noCandidateText = "No suitable restaurants found via provider."
)

// Write renders outcome as a human-readable listing.
func Write(w io.Writer, outcome agent.Outcome) error {
	var b strings.Builder
	switch outcome.Kind {
	case agent.OutcomeProviderFailed:
		if strings.HasPrefix(outcome.Message, "unexpected") {
			fmt.Fprintf(&b, "%s\n", capitalize(outcome.Message))
		} else {
			fmt.Fprintf(&b, "Provider error: %s\n", outcome.Message)
		}
	case agent.OutcomeNoCandidates:
		b.WriteString(noCandidateText + "\n")
	case agent.OutcomeAllRejected:
		b.WriteString(allRejectedText + "\n")
	case agent.OutcomeOK:
		if len(outcome.Venues) == 0 {
			b.WriteString(allRejectedText + "\n")
			break
		}
		b.WriteString("\n" + header + "\n\n")
		for _, v := range outcome.Venues {
			fmt.Fprintf(&b, "- %s (%s)\n", v.Name, strings.Join(v.Categories, ", "))
			fmt.Fprintf(&b, "  Rating: %s from %d reviews; %dm from point.\n", formatRating(v.Rating), v.ReviewCount, v.DistanceM)
			fmt.Fprintf(&b, "  Address: %s\n", v.Address)
			fmt.Fprintf(&b, "  More: %s\n", v.URL)
			if v.ReviewSummary != "" {
				fmt.Fprintf(&b, "  Review summary: %s\n", v.ReviewSummary)
			}
			b.WriteString("\n")
		}
	default:
		return fmt.Errorf("present: unknown outcome %q", outcome.Kind)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatRating(r float64) string {
	return fmt.Sprintf("%.1f", r)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
