package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"

	"claims-backend/internal/docload"
	localstore "claims-backend/internal/shared/storage/object/local"
)

func fullRecordJSON(t *testing.T, cat Category, overrides map[string]string) string {
	t.Helper()
	rec := make(map[string]string)
	for _, k := range Keys(cat) {
		rec[k] = "N/A"
	}
	for k, v := range overrides {
		rec[k] = v
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	return string(encoded)
}

func buildPDF(t *testing.T, lines ...string) []byte {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	for _, line := range lines {
		doc.MultiCell(190, 8, line, "", "L", false)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	return buf.Bytes()
}

func newTestExtractors(t *testing.T, fake *fakeLLM) (*Extractors, string) {
	t.Helper()
	dir := t.TempDir()
	store := localstore.New(dir)
	loader := docload.NewLoader(fake, nil, filepath.Join(dir, "images"))
	return NewExtractors(NewClient(fake), loader, store), dir
}

func TestBillRequiresCachedText(t *testing.T) {
	fake := &fakeLLM{}
	e, _ := newTestExtractors(t, fake)

	_, err := e.Bill(context.Background(), "u1")
	if !errors.Is(err, ErrTextNotCached) {
		t.Fatalf("expected ErrTextNotCached, got %v", err)
	}
	if !strings.Contains(err.Error(), "bills") {
		t.Fatalf("error should name the bills category: %v", err)
	}
	if fake.calls != 0 {
		t.Fatalf("no LLM call should be made, got %d", fake.calls)
	}
}

func TestBillReadsBillAndPolicyText(t *testing.T) {
	fake := &fakeLLM{responses: []string{
		fullRecordJSON(t, CategoryBills, map[string]string{"pharmacy-name": "MedPlus", "total": "1200"}),
	}}
	e, _ := newTestExtractors(t, fake)
	ctx := context.Background()

	if err := e.Store.WriteText(ctx, TextKey("u1", CategoryBills), "BILL LINES"); err != nil {
		t.Fatalf("write bill text: %v", err)
	}
	if err := e.Store.WriteText(ctx, TextKey("u1", CategoryPolicy), "POLICY LINES"); err != nil {
		t.Fatalf("write policy text: %v", err)
	}

	rec, err := e.Bill(ctx, "u1")
	if err != nil {
		t.Fatalf("bill extract: %v", err)
	}
	if rec["pharmacy-name"] != "MedPlus" {
		t.Fatalf("unexpected record: %v", rec)
	}
	prompt := fake.prompts[0]
	if !strings.Contains(prompt, "BILL LINES") || !strings.Contains(prompt, "POLICY LINES") {
		t.Fatalf("bill prompt should embed both cached texts")
	}
}

func TestReportExtractionIsIdempotent(t *testing.T) {
	resp := fullRecordJSON(t, CategoryReports, map[string]string{"reports-tests": "CBC panel"})
	fake := &fakeLLM{responses: []string{resp, resp}}
	e, _ := newTestExtractors(t, fake)
	ctx := context.Background()

	if err := e.Store.WriteText(ctx, TextKey("u1", CategoryReports), "REPORT TEXT"); err != nil {
		t.Fatalf("write report text: %v", err)
	}

	first, err := e.Report(ctx, "u1")
	if err != nil {
		t.Fatalf("first report extract: %v", err)
	}
	second, err := e.Report(ctx, "u1")
	if err != nil {
		t.Fatalf("second report extract: %v", err)
	}

	if !sameKeySet(first, second) {
		t.Fatalf("key sets differ: %v vs %v", first, second)
	}
}

func TestPolicyPartitionsDocumentAndCachesText(t *testing.T) {
	fake := &fakeLLM{responses: []string{
		fullRecordJSON(t, CategoryPolicy, map[string]string{
			"insurer":    "Acme Health Insurance",
			"start-date": "2023-01-01",
		}),
	}}
	e, _ := newTestExtractors(t, fake)
	ctx := context.Background()

	pdf := buildPDF(t,
		"Insurer: Acme Health Insurance",
		"Policy start date: 2023-01-01",
		"Total coverage: 500000")
	if _, _, err := e.Store.SaveArtifact(ctx, "docs/u1/policy.pdf", bytes.NewReader(pdf)); err != nil {
		t.Fatalf("save policy: %v", err)
	}

	rec, err := e.Policy(ctx, "u1", "docs/u1/policy.pdf", Answers{StartDate: []string{"2023-01-01"}})
	if err != nil {
		t.Fatalf("policy extract: %v", err)
	}
	if rec["insurer"] == "N/A" || rec["start-date"] == "N/A" {
		t.Fatalf("insurer and start-date should be answered: %v", rec)
	}
	if !strings.Contains(fake.prompts[0], "Acme") {
		t.Fatal("prompt should carry the partitioned policy text")
	}

	cached, err := e.Store.ReadText(ctx, TextKey("u1", CategoryPolicy))
	if err != nil {
		t.Fatalf("policy side-car should be cached: %v", err)
	}
	if !strings.Contains(cached, "Acme") {
		t.Fatalf("cached text missing content: %q", cached)
	}
}

func sameKeySet(a, b Record) bool {
	if len(a) != len(b) {
		return false
	}
	ka := make([]string, 0, len(a))
	kb := make([]string, 0, len(b))
	for k := range a {
		ka = append(ka, k)
	}
	for k := range b {
		kb = append(kb, k)
	}
	sort.Strings(ka)
	sort.Strings(kb)
	for i := range ka {
		if ka[i] != kb[i] {
			return false
		}
	}
	return true
}
