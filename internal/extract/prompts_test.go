package extract

import (
	"strings"
	"testing"
	"time"
)

func TestBuildPolicyPromptEmbedsContextAndKeys(t *testing.T) {
	ans := Answers{
		StartDate:      []string{"2023-01-01"},
		Disease:        []string{"diabetes"},
		FirstDiagnosis: []string{"2022-06-01"},
		DrinkSmoke:     []string{"no"},
	}
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	prompt := BuildPolicyPrompt("POLICY TEXT HERE", ans.ContextBlock(now))

	for _, want := range []string{
		"POLICY TEXT HERE",
		"start date of policy: 2023-01-01",
		"whether any ongoing disease: diabetes",
		"today's date: 2024-03-01",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	for _, key := range Keys(CategoryPolicy) {
		if !strings.Contains(prompt, `"`+key+`"`) {
			t.Errorf("prompt missing output key %q", key)
		}
	}
}

func TestBuildBillPromptEmbedsBothDocuments(t *testing.T) {
	prompt := BuildBillPrompt("BILL TEXT", "POLICY TEXT")
	if !strings.Contains(prompt, "BILL TEXT") || !strings.Contains(prompt, "POLICY TEXT") {
		t.Fatal("bill prompt must carry the bill and the policy text")
	}
	if strings.Index(prompt, "BILL TEXT") > strings.Index(prompt, "POLICY TEXT") {
		t.Fatal("bill text should precede the policy cross-check block")
	}
}

func TestAnswersContextBlockDefaultsToNA(t *testing.T) {
	block := Answers{}.ContextBlock(time.Now())
	if !strings.Contains(block, "start date of policy: N/A") {
		t.Fatalf("empty answers should render N/A, got %q", block)
	}
}
