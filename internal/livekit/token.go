// internal/livekit/token.go
package livekit

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"interview-backend/internal/common/config"
	"interview-backend/internal/common/errors"

	"github.com/golang-jwt/jwt/v5"
)

// VideoGrant mirrors the platform's video grant claim.
type VideoGrant struct {
	Room           string `json:"room,omitempty"`
	RoomJoin       bool   `json:"roomJoin,omitempty"`
	Agent          bool   `json:"agent,omitempty"`
	CanPublish     *bool  `json:"canPublish,omitempty"`
	CanPublishData *bool  `json:"canPublishData,omitempty"`
	CanSubscribe   *bool  `json:"canSubscribe,omitempty"`
}

// AgentDispatch names the agent to start when the room is created.
type AgentDispatch struct {
	AgentName string `json:"agent_name,omitempty"`
}

// RoomConfig is the room configuration embedded in an access token. Metadata
// is an opaque payload handed to the dispatched agent.
type RoomConfig struct {
	Agents   []AgentDispatch `json:"agents,omitempty"`
	Metadata string          `json:"metadata,omitempty"`
}

// Claims is the platform access token payload: a standard HS256 JWT with
// iss = API key and sub = participant identity.
type Claims struct {
	Name       string      `json:"name,omitempty"`
	Video      *VideoGrant `json:"video,omitempty"`
	RoomConfig *RoomConfig `json:"roomConfig,omitempty"`
	Metadata   string      `json:"metadata,omitempty"`
	jwt.RegisteredClaims
}

// ConnectionDetails is everything a browser client needs to join a session.
type ConnectionDetails struct {
	ServerURL        string
	RoomName         string
	ParticipantName  string
	ParticipantToken string
}

// TokenService issues locally signed access tokens for the real-time
// platform. Tokens are stateless; nothing is persisted and the service is
// safe for concurrent use.
type TokenService struct {
	cfg config.LiveKitConfig
}

func NewTokenService(cfg config.LiveKitConfig) *TokenService {
	return &TokenService{cfg: cfg}
}

// NewSession builds connection details for a fresh interview session:
// random room and identity, a 15-minute participant token with full publish
// and subscribe rights on that room, and a room configuration that dispatches
// the agent and carries the candidate's resume text when one is known.
func (s *TokenService) NewSession(agentName, resumeText string) (*ConnectionDetails, error) {
	if missing := s.missingCredentials(); missing != "" {
		return nil, errors.NewPlatformNotConfiguredError(missing)
	}

	identity := fmt.Sprintf("voice_assistant_user_%d", rand.Intn(99999)+1)
	roomName := fmt.Sprintf("voice_assistant_room_%d", rand.Intn(99999)+1)
	participantName := "user"

	if agentName == "" {
		agentName = s.cfg.AgentName
	}

	var roomConfig *RoomConfig
	if agentName != "" {
		roomConfig = &RoomConfig{Agents: []AgentDispatch{{AgentName: agentName}}}
		if resumeText != "" {
			metadata, err := json.Marshal(map[string]string{"resume_text": resumeText})
			if err != nil {
				return nil, errors.NewTokenIssueFailedError(err)
			}
			roomConfig.Metadata = string(metadata)
		}
	}

	yes := true
	token, err := s.sign(Claims{
		Name: participantName,
		Video: &VideoGrant{
			Room:           roomName,
			RoomJoin:       true,
			CanPublish:     &yes,
			CanPublishData: &yes,
			CanSubscribe:   &yes,
		},
		RoomConfig: roomConfig,
	}, identity, s.cfg.TTL())
	if err != nil {
		return nil, errors.NewTokenIssueFailedError(err)
	}

	return &ConnectionDetails{
		ServerURL:        s.cfg.URL,
		RoomName:         roomName,
		ParticipantName:  participantName,
		ParticipantToken: token,
	}, nil
}

// WorkerToken signs a token authorizing an agent worker to register with the
// platform. Worker registrations are long-lived, so the TTL is a day.
func (s *TokenService) WorkerToken(workerIdentity string) (string, error) {
	if missing := s.missingCredentials(); missing != "" {
		return "", errors.NewPlatformNotConfiguredError(missing)
	}

	token, err := s.sign(Claims{
		Video: &VideoGrant{Agent: true},
	}, workerIdentity, 24*time.Hour)
	if err != nil {
		return "", errors.NewTokenIssueFailedError(err)
	}
	return token, nil
}

func (s *TokenService) sign(claims Claims, identity string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    s.cfg.APIKey,
		Subject:   identity,
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.APISecret))
}

func (s *TokenService) missingCredentials() string {
	switch {
	case s.cfg.URL == "":
		return "LIVEKIT_URL"
	case s.cfg.APIKey == "":
		return "LIVEKIT_API_KEY"
	case s.cfg.APISecret == "":
		return "LIVEKIT_API_SECRET"
	default:
		return ""
	}
}
