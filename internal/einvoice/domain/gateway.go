package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotIssued            = errors.New("einvoice_invoice_not_issued")
	ErrAlreadySubmitted     = errors.New("einvoice_already_submitted")
	ErrSubmissionInProgress = errors.New("einvoice_submission_in_progress")
	ErrProviderNotFound     = errors.New("einvoice_provider_not_found")
	ErrProviderRejected     = errors.New("einvoice_provider_rejected")
	ErrProviderUnavailable  = errors.New("einvoice_provider_unavailable")
)

// MetadataKey is where the receipt is stored on the invoice metadata.
const MetadataKey = "einvoice"

// PendingMarker is stored while a submission is in flight. It never carries
// an external id, so it cannot be mistaken for a stored receipt.
func PendingMarker(provider string) map[string]any {
	return map[string]any{"provider": provider, "claimed": true}
}

// IsPending reports whether a stored metadata entry is a pending marker.
func IsPending(entry any) bool {
	m, ok := entry.(map[string]any)
	return ok && m["claimed"] == true
}

// Receipt is the provider acknowledgement of a submission.
type Receipt struct {
	Provider    string    `json:"provider"`
	ExternalID  string    `json:"external_id"`
	Status      string    `json:"status"`
	Reference   string    `json:"reference,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (r Receipt) ToMap() map[string]any {
	out := map[string]any{
		"provider":     r.Provider,
		"external_id":  r.ExternalID,
		"status":       r.Status,
		"submitted_at": r.SubmittedAt.UTC().Format(time.RFC3339),
	}
	if r.Reference != "" {
		out["reference"] = r.Reference
	}
	return out
}

// Gateway sends submissions to an electronic invoicing provider.
type Gateway interface {
	Provider() string
	Submit(ctx context.Context, submission *Submission) (*Receipt, error)
}

// ProviderError carries a non-success provider response.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.kind().Error(), e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.kind() }

func (e *ProviderError) kind() error {
	if e.StatusCode >= 500 || e.StatusCode == 429 {
		return ErrProviderUnavailable
	}
	return ErrProviderRejected
}

// Registry resolves gateways by provider name.
type Registry struct {
	mu       sync.RWMutex
	gateways map[string]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[string]Gateway)}
	for _, g := range gateways {
		r.Register(g)
	}
	return r
}

func (r *Registry) Register(g Gateway) {
	if g == nil {
		return
	}
	r.mu.Lock()
	r.gateways[strings.ToLower(g.Provider())] = g
	r.mu.Unlock()
}

func (r *Registry) Get(provider string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gateways[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return g, nil
}

type Service interface {
	// Submit sends an issued invoice and stores the receipt on it.
	Submit(ctx context.Context, invoiceID string) (*Receipt, error)
	// Preview builds the submission without sending it.
	Preview(ctx context.Context, invoiceID string) (*Submission, error)
}
