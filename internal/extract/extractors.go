package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"claims-backend/internal/docload"
	"claims-backend/internal/shared/storage/object"
)

// ErrTextNotCached is returned when an extractor needs a text side-car that
// has not been produced yet.
var ErrTextNotCached = errors.New("document text not cached")

// TextKey returns the storage key of a category's extracted-text side-car.
func TextKey(user string, cat Category) string {
	return fmt.Sprintf("text/%s/%s.txt", user, cat)
}

// Extractors bundles the six per-category extraction operations. Policy and
// discharge read their documents fresh; the rest read previously cached text
// side-cars written at upload time.
type Extractors struct {
	Client *Client
	Loader *docload.Loader
	Store  object.Store
	Now    func() time.Time
}

// NewExtractors wires the extraction operations.
func NewExtractors(client *Client, loader *docload.Loader, store object.Store) *Extractors {
	return &Extractors{
		Client: client,
		Loader: loader,
		Store:  store,
		Now:    time.Now,
	}
}

// Policy partitions the stored policy document, caches its text side-car for
// the bill cross-check, and extracts the 16-field policy record.
func (e *Extractors) Policy(ctx context.Context, user, docKey string, ans Answers) (Record, error) {
	path, err := e.Store.AbsPath(docKey)
	if err != nil {
		return nil, fmt.Errorf("policy document path: %w", err)
	}
	text, err := e.Loader.Partition(path)
	if err != nil {
		return nil, fmt.Errorf("load policy document: %w", err)
	}
	if err := e.Store.WriteText(ctx, TextKey(user, CategoryPolicy), text); err != nil {
		return nil, fmt.Errorf("cache policy text: %w", err)
	}

	prompt := BuildPolicyPrompt(text, ans.ContextBlock(e.Now()))
	return e.Client.Extract(ctx, CategoryPolicy, prompt)
}

// Bill reads the cached bill text plus the cached policy text and extracts
// the reimbursement record.
func (e *Extractors) Bill(ctx context.Context, user string) (Record, error) {
	billText, err := e.readCached(ctx, user, CategoryBills)
	if err != nil {
		return nil, err
	}
	policyText, err := e.readCached(ctx, user, CategoryPolicy)
	if err != nil {
		return nil, err
	}

	prompt := BuildBillPrompt(billText, policyText)
	return e.Client.Extract(ctx, CategoryBills, prompt)
}

// Discharge partitions the stored discharge summary directly and extracts
// the 3-field record.
func (e *Extractors) Discharge(ctx context.Context, docKey string) (Record, error) {
	path, err := e.Store.AbsPath(docKey)
	if err != nil {
		return nil, fmt.Errorf("discharge document path: %w", err)
	}
	text, err := e.Loader.Partition(path)
	if err != nil {
		return nil, fmt.Errorf("load discharge document: %w", err)
	}

	prompt := BuildDischargePrompt(text)
	return e.Client.Extract(ctx, CategoryDischarge, prompt)
}

// Report summarizes the cached report text.
func (e *Extractors) Report(ctx context.Context, user string) (Record, error) {
	text, err := e.readCached(ctx, user, CategoryReports)
	if err != nil {
		return nil, err
	}
	return e.Client.Extract(ctx, CategoryReports, BuildReportPrompt(text))
}

// ClaimForm extracts the reimbursement sought from the cached claim form
// text.
func (e *Extractors) ClaimForm(ctx context.Context, user string) (Record, error) {
	text, err := e.readCached(ctx, user, CategoryClaim)
	if err != nil {
		return nil, err
	}
	return e.Client.Extract(ctx, CategoryClaim, BuildClaimPrompt(text))
}

// Prescription summarizes the cached prescription text.
func (e *Extractors) Prescription(ctx context.Context, user string) (Record, error) {
	text, err := e.readCached(ctx, user, CategoryPrescriptions)
	if err != nil {
		return nil, err
	}
	return e.Client.Extract(ctx, CategoryPrescriptions, BuildPrescriptionPrompt(text))
}

func (e *Extractors) readCached(ctx context.Context, user string, cat Category) (string, error) {
	text, err := e.Store.ReadText(ctx, TextKey(user, cat))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrTextNotCached, cat)
	}
	return text, nil
}
