// internal/credcheck/checker.go
package credcheck

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"interview-backend/internal/common/config"
	httpclient "interview-backend/internal/common/http"
	"interview-backend/internal/livekit"
	"interview-backend/internal/models"
)

const probeTimeout = 10 * time.Second

// Default probe endpoints; overridable for tests.
const (
	defaultGoogleBaseURL     = "https://generativelanguage.googleapis.com"
	defaultDeepgramBaseURL   = "https://api.deepgram.com"
	defaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	defaultTavusBaseURL      = "https://api.tavus.io"
)

// placeholders are template values that count as "not configured".
var placeholders = []string{
	"----",
	"your_google_api_key",
	"your_deepgram_api_key",
	"your_elevenlabs_api_key",
	"your_livekit_api_key",
	"your_livekit_api_secret",
	"your_service_role_key",
	"your_tavus_api_key",
	"wss://your-livekit-server.com",
	"https://your-project.supabase.co",
}

// Checker probes every configured provider credential. Probes are isolated:
// one failing or panicking probe never prevents the rest from running.
type Checker struct {
	cfg    *config.Config
	client *httpclient.Client

	googleBaseURL     string
	deepgramBaseURL   string
	elevenLabsBaseURL string
	tavusBaseURL      string
}

func NewChecker(cfg *config.Config) *Checker {
	return &Checker{
		cfg:               cfg,
		client:            httpclient.NewClient(probeTimeout),
		googleBaseURL:     defaultGoogleBaseURL,
		deepgramBaseURL:   defaultDeepgramBaseURL,
		elevenLabsBaseURL: defaultElevenLabsBaseURL,
		tavusBaseURL:      defaultTavusBaseURL,
	}
}

// Run probes all providers and returns one status per provider, required
// providers first.
func (c *Checker) Run(ctx context.Context) []models.CredentialStatus {
	probes := []struct {
		name     string
		required bool
		probe    func(ctx context.Context) (models.CredentialState, string)
	}{
		{"Google Gemini", true, c.checkGoogle},
		{"Deepgram", true, c.checkDeepgram},
		{"ElevenLabs", true, c.checkElevenLabs},
		{"LiveKit", true, c.checkLiveKit},
		{"Supabase", true, c.checkSupabase},
		{"Tavus", false, c.checkTavus},
	}

	statuses := make([]models.CredentialStatus, 0, len(probes))
	for _, p := range probes {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		state, detail := runIsolated(probeCtx, p.probe)
		cancel()

		statuses = append(statuses, models.CredentialStatus{
			Provider: p.name,
			Required: p.required,
			State:    state,
			Detail:   detail,
		})
	}
	return statuses
}

// AllRequiredOK reports whether every required provider validated.
func AllRequiredOK(statuses []models.CredentialStatus) bool {
	for _, s := range statuses {
		if s.Required && !s.OK() {
			return false
		}
	}
	return true
}

// runIsolated converts a probe panic into an error state instead of taking
// down the whole run.
func runIsolated(ctx context.Context, probe func(ctx context.Context) (models.CredentialState, string)) (state models.CredentialState, detail string) {
	defer func() {
		if r := recover(); r != nil {
			state = models.CredentialError
			detail = fmt.Sprintf("probe panicked: %v", r)
		}
	}()
	return probe(ctx)
}

func configured(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return false
	}
	for _, p := range placeholders {
		if v == p {
			return false
		}
	}
	return true
}

// ==========================
// Provider Probes
// ==========================

func (c *Checker) checkGoogle(ctx context.Context) (models.CredentialState, string) {
	key := strings.TrimSpace(c.cfg.Providers.Google.APIKey)
	if !configured(key) {
		return models.CredentialNotConfigured, "GOOGLE_API_KEY not set"
	}

	url := c.googleBaseURL + "/v1beta/models?key=" + key
	status, err := c.get(ctx, url, nil)
	if err != nil {
		return models.CredentialError, err.Error()
	}

	switch {
	case status == http.StatusOK:
		return models.CredentialValid, ""
	case status == http.StatusTooManyRequests:
		return models.CredentialQuotaExceeded, "quota exceeded, key is valid"
	case status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusForbidden:
		return models.CredentialInvalid, fmt.Sprintf("status %d", status)
	default:
		return models.CredentialError, fmt.Sprintf("unexpected status %d", status)
	}
}

func (c *Checker) checkDeepgram(ctx context.Context) (models.CredentialState, string) {
	key := strings.TrimSpace(c.cfg.Providers.Deepgram.APIKey)
	if !configured(key) {
		return models.CredentialNotConfigured, "DEEPGRAM_API_KEY not set"
	}

	status, err := c.get(ctx, c.deepgramBaseURL+"/v1/projects", map[string]string{
		"Authorization": "Token " + key,
	})
	if err != nil {
		return models.CredentialError, err.Error()
	}

	switch status {
	case http.StatusOK:
		return models.CredentialValid, ""
	case http.StatusUnauthorized:
		return models.CredentialInvalid, "401 unauthorized"
	default:
		return models.CredentialError, fmt.Sprintf("unexpected status %d", status)
	}
}

func (c *Checker) checkElevenLabs(ctx context.Context) (models.CredentialState, string) {
	key := strings.TrimSpace(c.cfg.Providers.ElevenLabs.APIKey)
	if !configured(key) {
		return models.CredentialNotConfigured, "ELEVENLABS_API_KEY not set"
	}

	status, err := c.get(ctx, c.elevenLabsBaseURL+"/v1/user", map[string]string{
		"xi-api-key": key,
	})
	if err != nil {
		return models.CredentialError, err.Error()
	}

	switch status {
	case http.StatusOK:
		return models.CredentialValid, ""
	case http.StatusUnauthorized:
		return models.CredentialInvalid, "401 unauthorized"
	default:
		return models.CredentialError, fmt.Sprintf("unexpected status %d", status)
	}
}

// checkLiveKit needs no network round trip: the credentials validate if a
// token can be signed locally with them.
func (c *Checker) checkLiveKit(ctx context.Context) (models.CredentialState, string) {
	lk := c.cfg.LiveKit
	if !configured(lk.URL) || !configured(lk.APIKey) || !configured(lk.APISecret) {
		return models.CredentialNotConfigured, "LIVEKIT_URL, LIVEKIT_API_KEY or LIVEKIT_API_SECRET not set"
	}

	if _, err := livekit.NewTokenService(lk).WorkerToken("credential-check"); err != nil {
		return models.CredentialInvalid, fmt.Sprintf("token generation failed: %v", err)
	}
	return models.CredentialValid, "token generation successful"
}

func (c *Checker) checkSupabase(ctx context.Context) (models.CredentialState, string) {
	sb := c.cfg.Supabase
	if !configured(sb.URL) || !configured(sb.ServiceKey) {
		return models.CredentialNotConfigured, "SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY not set"
	}

	status, err := c.get(ctx, strings.TrimRight(sb.URL, "/")+"/rest/v1/", map[string]string{
		"apikey":        sb.ServiceKey,
		"Authorization": "Bearer " + sb.ServiceKey,
	})
	if err != nil {
		// The REST root is not a stable health endpoint; reachability
		// problems do not prove the key is bad.
		return models.CredentialAssumedValid, fmt.Sprintf("could not validate: %v", err)
	}

	switch status {
	case http.StatusOK, http.StatusMovedPermanently, http.StatusFound:
		return models.CredentialValid, ""
	case http.StatusUnauthorized:
		return models.CredentialInvalid, "401 unauthorized"
	default:
		return models.CredentialAssumedValid, fmt.Sprintf("ambiguous status %d", status)
	}
}

func (c *Checker) checkTavus(ctx context.Context) (models.CredentialState, string) {
	key := strings.TrimSpace(c.cfg.Providers.Tavus.APIKey)
	if !configured(key) {
		return models.CredentialNotConfigured, "TAVUS_API_KEY not set (optional)"
	}

	status, err := c.get(ctx, c.tavusBaseURL+"/v2/replicas", map[string]string{
		"x-api-key": key,
	})
	if err != nil {
		return models.CredentialError, err.Error()
	}

	switch status {
	case http.StatusOK:
		return models.CredentialValid, ""
	case http.StatusUnauthorized:
		return models.CredentialInvalid, "401 unauthorized"
	case http.StatusPaymentRequired:
		return models.CredentialQuotaExceeded, "valid but out of credits"
	default:
		return models.CredentialError, fmt.Sprintf("unexpected status %d", status)
	}
}

func (c *Checker) get(ctx context.Context, url string, headers map[string]string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.DoWithContext(ctx, req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
