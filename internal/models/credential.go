// internal/models/credential.go
package models

// CredentialState classifies a provider credential probe result.
type CredentialState string

const (
	CredentialValid         CredentialState = "valid"
	CredentialInvalid       CredentialState = "invalid"
	CredentialQuotaExceeded CredentialState = "quota_exceeded"
	CredentialNotConfigured CredentialState = "not_configured"
	CredentialAssumedValid  CredentialState = "assumed_valid"
	CredentialError         CredentialState = "error"
)

// CredentialStatus is the outcome of probing one provider credential.
type CredentialStatus struct {
	Provider string          `json:"provider"`
	Required bool            `json:"required"`
	State    CredentialState `json:"state"`
	Detail   string          `json:"detail,omitempty"`
}

// OK reports whether the status should count as passing. A quota-exceeded key
// is a working key that has run out of credits, so it passes.
func (s CredentialStatus) OK() bool {
	switch s.State {
	case CredentialValid, CredentialAssumedValid, CredentialQuotaExceeded:
		return true
	default:
		return false
	}
}
