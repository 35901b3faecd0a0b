// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. This enables better error categorization, logging,
// and user experience by providing context-aware error information.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// making it easier to handle different types of failures appropriately.
package errors

import "fmt"

// Kind is a machine-readable error category.
type Kind string

const (
	// ProviderFailed indicates the identity provider itself failed (SDK init,
	// token endpoint unreachable during an established session).
	ProviderFailed Kind = "provider_failed"
	// SyncRejected indicates the backend rejected the session (401/403) even
	// though the provider considers the user signed in.
	SyncRejected Kind = "sync_rejected"
	// SyncTransient indicates a network or 5xx failure during user sync.
	SyncTransient Kind = "sync_transient"
	// OrgClaimNotReady indicates the issued token's organization claim has not
	// propagated yet after organization creation.
	OrgClaimNotReady Kind = "org_claim_not_ready"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }
