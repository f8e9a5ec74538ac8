package claims

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"claims-backend/internal/docload"
	"claims-backend/internal/extract"
	"claims-backend/internal/shared/storage/object"
	"claims-backend/internal/shared/telemetry"
	"claims-backend/internal/shared/util"
)

// CoverageKeys are the policy-record fields returned by the policy coverage
// operation, in response order.
var CoverageKeys = []string{
	"insurer",
	"start-date",
	"ped",
	"first-diagnosis",
	"ongoing-treatment-disease",
	"ongoing-disease-covered",
	"ped-waiting-over",
	"total-cover-amount",
	"co-payment",
	"pre-hospitalization-days",
	"post-hospitalization-days",
	"fraud",
	"remarks",
}

// Service orchestrates uploads, text caching, per-category extraction and
// aggregation for a user's claim.
type Service struct {
	Store      object.Store
	Loader     *docload.Loader
	Extractors *extract.Extractors
	Manifests  *ManifestStore
}

// NewService wires the claims service.
func NewService(store object.Store, loader *docload.Loader, extractors *extract.Extractors) *Service {
	return &Service{
		Store:      store,
		Loader:     loader,
		Extractors: extractors,
		Manifests:  &ManifestStore{Store: store},
	}
}

func artifactKey(user string, cat extract.Category, ext string) string {
	return fmt.Sprintf("docs/%s/%s.%s", user, cat, ext)
}

// UploadDocument stores one artifact under the user's directory, records it
// in the manifest, and triggers the category's text-caching step: reports go
// through structural partitioning, bills/prescriptions/claim through the
// rasterize-and-transcribe path, policy and discharge are stored only.
func (s *Service) UploadDocument(ctx context.Context, user string, cat extract.Category, fileName string, r io.Reader) (Entry, error) {
	if strings.TrimSpace(user) == "" {
		return Entry{}, fmt.Errorf("%w: user is required", ErrInvalidInput)
	}
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	key := artifactKey(user, cat, util.FileExt(sanitized))

	// A re-upload with a different extension would otherwise leave the old
	// artifact behind.
	manifest, err := s.Manifests.Load(ctx, user)
	if err != nil {
		return Entry{}, err
	}
	if prev, ok := manifest[cat]; ok && prev.StorageKey != key {
		if err := s.Store.Remove(ctx, prev.StorageKey); err != nil {
			return Entry{}, fmt.Errorf("replace artifact: %w", err)
		}
	}

	size, mime, err := s.Store.SaveArtifact(ctx, key, r)
	if err != nil {
		return Entry{}, fmt.Errorf("save artifact: %w", err)
	}

	entry := Entry{
		Category:   cat,
		StorageKey: key,
		FileName:   sanitized,
		MimeType:   mime,
		SizeBytes:  size,
		UploadedAt: time.Now().UTC(),
	}
	if _, err := s.Manifests.Put(ctx, user, entry); err != nil {
		return Entry{}, err
	}

	switch cat {
	case extract.CategoryPolicy, extract.CategoryDischarge:
		// Extraction is deferred to the assessment step.
	case extract.CategoryReports:
		if err := s.cachePartitioned(ctx, user, cat, key); err != nil {
			return Entry{}, err
		}
	default:
		if err := s.cacheScanned(ctx, user, cat, key); err != nil {
			return Entry{}, err
		}
	}

	telemetry.Info("document.uploaded", map[string]any{
		"user":     user,
		"category": string(cat),
		"bytes":    size,
		"mime":     mime,
	})
	return entry, nil
}

func (s *Service) cachePartitioned(ctx context.Context, user string, cat extract.Category, key string) error {
	path, err := s.Store.AbsPath(key)
	if err != nil {
		return err
	}
	text, err := s.Loader.Partition(path)
	if err != nil {
		return fmt.Errorf("partition %s: %w", cat, err)
	}
	return s.Store.WriteText(ctx, extract.TextKey(user, cat), text)
}

func (s *Service) cacheScanned(ctx context.Context, user string, cat extract.Category, key string) error {
	path, err := s.Store.AbsPath(key)
	if err != nil {
		return err
	}
	text, err := s.Loader.LoadScanned(ctx, path, user)
	if err != nil {
		return fmt.Errorf("load %s: %w", cat, err)
	}
	return s.Store.WriteText(ctx, extract.TextKey(user, cat), text)
}

// ListDocuments returns the user's manifest entries in fixed category order.
func (s *Service) ListDocuments(ctx context.Context, user string) ([]Entry, error) {
	manifest, err := s.Manifests.Load(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(manifest))
	for _, cat := range extract.Categories() {
		if entry, ok := manifest[cat]; ok {
			out = append(out, entry)
		}
	}
	return out, nil
}

// PolicyCoverage stores the uploaded policy, runs the policy extractor with
// the user's contextual answers, and returns the coverage answer fields.
func (s *Service) PolicyCoverage(ctx context.Context, user, fileName string, r io.Reader, ans extract.Answers) (extract.Record, error) {
	entry, err := s.UploadDocument(ctx, user, extract.CategoryPolicy, fileName, r)
	if err != nil {
		return nil, err
	}

	rec, err := s.Extractors.Policy(ctx, user, entry.StorageKey, ans)
	if err != nil {
		return nil, err
	}

	answer := make(extract.Record, len(CoverageKeys))
	for _, k := range CoverageKeys {
		v, ok := rec[k]
		if !ok {
			v = "N/A"
		}
		answer[k] = v
	}
	return answer, nil
}

// AssessClaim runs the full multi-document assessment. The docs list names
// the categories the caller believes are uploaded; it is cross-checked
// against the manifest. Policy, bill and discharge extraction always run;
// report, prescription and claim-form extraction run when the manifest shows
// the artifact. It fails fast, before any extraction call, when a required
// category is missing.
func (s *Service) AssessClaim(ctx context.Context, user string, docs []string, ans extract.Answers) (extract.Record, error) {
	manifest, err := s.Manifests.Load(ctx, user)
	if err != nil {
		return nil, err
	}

	declared := make(map[extract.Category]bool, len(docs))
	for _, d := range docs {
		declared[extract.Category(strings.ToLower(strings.TrimSpace(d)))] = true
	}

	var missing []string
	for _, cat := range extract.RequiredCategories() {
		if !declared[cat] || !manifest.Has(cat) {
			missing = append(missing, string(cat))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s (uploaded: %s)",
			ErrMissingDocuments, strings.Join(missing, ", "), strings.Join(docs, ", "))
	}

	policyRec, err := s.Extractors.Policy(ctx, user, manifest[extract.CategoryPolicy].StorageKey, ans)
	if err != nil {
		return nil, err
	}
	billRec, err := s.Extractors.Bill(ctx, user)
	if err != nil {
		return nil, err
	}
	dischargeRec, err := s.Extractors.Discharge(ctx, manifest[extract.CategoryDischarge].StorageKey)
	if err != nil {
		return nil, err
	}

	parts := []Part{
		{Source: "context", Record: ans.Record()},
		{Source: string(extract.CategoryPolicy), Record: policyRec},
		{Source: string(extract.CategoryBills), Record: billRec},
		{Source: string(extract.CategoryDischarge), Record: dischargeRec},
	}

	if manifest.Has(extract.CategoryReports) {
		rec, err := s.Extractors.Report(ctx, user)
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{Source: string(extract.CategoryReports), Record: rec})
	}
	if manifest.Has(extract.CategoryPrescriptions) {
		rec, err := s.Extractors.Prescription(ctx, user)
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{Source: string(extract.CategoryPrescriptions), Record: rec})
	}
	if manifest.Has(extract.CategoryClaim) {
		rec, err := s.Extractors.ClaimForm(ctx, user)
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{Source: string(extract.CategoryClaim), Record: rec})
	}

	return Aggregate(parts...), nil
}
