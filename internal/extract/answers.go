package extract

import (
	"fmt"
	"strings"
	"time"
)

// Answers carries the free-text contextual answers a user supplies alongside
// an upload. Each field may repeat on the form, so values are kept as
// ordered lists.
type Answers struct {
	User           string
	StartDate      []string
	Disease        []string
	FirstDiagnosis []string
	DrinkSmoke     []string
}

// ContextBlock renders the additional-data section embedded into prompts,
// stamping today's date.
func (a Answers) ContextBlock(now time.Time) string {
	var b strings.Builder
	b.WriteString("The user has provided the following data:\n")
	fmt.Fprintf(&b, "start date of policy: %s\n", joinValues(a.StartDate))
	fmt.Fprintf(&b, "whether any ongoing disease: %s\n", joinValues(a.Disease))
	fmt.Fprintf(&b, "when was the ongoing disease first diagnosed: %s\n", joinValues(a.FirstDiagnosis))
	fmt.Fprintf(&b, "do you drink or smoke: %s\n", joinValues(a.DrinkSmoke))
	fmt.Fprintf(&b, "today's date: %s\n", now.Format("2006-01-02"))
	return b.String()
}

// Record exposes the answers as an extraction record so they participate in
// aggregation ahead of every extractor output.
func (a Answers) Record() Record {
	return Record{
		"user":          a.User,
		"start-date":    joinValues(a.StartDate),
		"disease":       joinValues(a.Disease),
		"diagnose-date": joinValues(a.FirstDiagnosis),
		"drink-smoke":   joinValues(a.DrinkSmoke),
	}
}

func joinValues(values []string) string {
	var kept []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	if len(kept) == 0 {
		return "N/A"
	}
	return strings.Join(kept, ", ")
}
