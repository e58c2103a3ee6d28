// internal/agent/worker.go
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"interview-backend/internal/common/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/xeipuuv/gojsonschema"
)

// Message types on the worker protocol.
const (
	MessageTypeRegister   = "register"
	MessageTypeRegistered = "registered"
	MessageTypeDispatch   = "dispatch"
	MessageTypeJobUpdate  = "job_update"
	MessageTypePing       = "ping"
	MessageTypePong       = "pong"
)

// Job statuses reported back to the platform.
const (
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// dispatchSchema validates incoming dispatch payloads before they reach the
// entrypoint.
const dispatchSchema = `{
	"type": "object",
	"required": ["dispatch_id", "room_name"],
	"properties": {
		"dispatch_id": {"type": "string", "minLength": 1},
		"room_name":   {"type": "string", "minLength": 1},
		"agent_name":  {"type": "string"},
		"metadata":    {"type": "string"}
	}
}`

// Job is one session dispatch handed to the entrypoint.
type Job struct {
	DispatchID string `json:"dispatch_id"`
	RoomName   string `json:"room_name"`
	AgentName  string `json:"agent_name,omitempty"`
	Metadata   string `json:"metadata,omitempty"`
}

// ResumeContext decodes the room metadata forwarded with a dispatch.
func (j *Job) ResumeContext() (string, error) {
	if j.Metadata == "" {
		return "", nil
	}
	var meta struct {
		ResumeText string `json:"resume_text"`
	}
	if err := json.Unmarshal([]byte(j.Metadata), &meta); err != nil {
		return "", fmt.Errorf("decode dispatch metadata: %w", err)
	}
	return meta.ResumeText, nil
}

// Entrypoint runs one interview session. It is invoked once per dispatch and
// must return when the session ends.
type Entrypoint func(ctx context.Context, job *Job) error

type message struct {
	Type       string `json:"type"`
	WorkerID   string `json:"worker_id,omitempty"`
	AgentName  string `json:"agent_name,omitempty"`
	DispatchID string `json:"dispatch_id,omitempty"`
	RoomName   string `json:"room_name,omitempty"`
	Metadata   string `json:"metadata,omitempty"`
	Status     string `json:"status,omitempty"`
	Error      string `json:"error,omitempty"`
}

// TokenSource signs the registration token presented to the platform.
type TokenSource interface {
	WorkerToken(workerIdentity string) (string, error)
}

// Worker registers with the real-time platform and blocks reading session
// dispatches. There is no internal reconnect; a failed connection ends Run
// and process supervision restarts the worker.
type Worker struct {
	serverURL  string
	agentName  string
	workerID   string
	tokens     TokenSource
	entrypoint Entrypoint
	logger     logger.Logger
	schema     *gojsonschema.Schema

	dial func(ctx context.Context, wsURL string, header http.Header) (*websocket.Conn, error)
}

func NewWorker(serverURL, agentName string, tokens TokenSource, entrypoint Entrypoint, log logger.Logger) (*Worker, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(dispatchSchema))
	if err != nil {
		return nil, fmt.Errorf("compile dispatch schema: %w", err)
	}

	workerID := fmt.Sprintf("AW_%s", uuid.New().String()[:12])

	return &Worker{
		serverURL:  serverURL,
		agentName:  agentName,
		workerID:   workerID,
		tokens:     tokens,
		entrypoint: entrypoint,
		logger: log.WithFields(map[string]interface{}{
			"workerId":  workerID,
			"agentName": agentName,
		}),
		schema: schema,
		dial: func(ctx context.Context, wsURL string, header http.Header) (*websocket.Conn, error) {
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
			return conn, err
		},
	}, nil
}

// Run connects, registers, and processes dispatches until the context is
// canceled or the connection drops.
func (w *Worker) Run(ctx context.Context) error {
	wsURL, err := agentEndpoint(w.serverURL)
	if err != nil {
		return err
	}

	token, err := w.tokens.WorkerToken(w.workerID)
	if err != nil {
		return fmt.Errorf("sign worker token: %w", err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, err := w.dial(ctx, wsURL, header)
	if err != nil {
		return fmt.Errorf("connect to platform: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(message{
		Type:      MessageTypeRegister,
		WorkerID:  w.workerID,
		AgentName: w.agentName,
	}); err != nil {
		return fmt.Errorf("send register: %w", err)
	}

	w.logger.Info("worker registered, waiting for dispatches", map[string]interface{}{
		"serverUrl": w.serverURL,
	})

	// Close the connection when the context ends so the read loop unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read from platform: %w", err)
		}

		switch msg.Type {
		case MessageTypeRegistered:
			w.logger.Debug("registration acknowledged", nil)
		case MessageTypePing:
			_ = conn.WriteJSON(message{Type: MessageTypePong, WorkerID: w.workerID})
		case MessageTypeDispatch:
			w.handleDispatch(ctx, conn, msg)
		default:
			w.logger.Warn("unknown message type", map[string]interface{}{"type": msg.Type})
		}
	}
}

func (w *Worker) handleDispatch(ctx context.Context, conn *websocket.Conn, msg message) {
	job := &Job{
		DispatchID: msg.DispatchID,
		RoomName:   msg.RoomName,
		AgentName:  msg.AgentName,
		Metadata:   msg.Metadata,
	}

	if err := w.validateDispatch(job); err != nil {
		w.logger.Error("invalid dispatch payload", map[string]interface{}{
			"error":      err.Error(),
			"dispatchId": msg.DispatchID,
		})
		_ = conn.WriteJSON(message{
			Type:       MessageTypeJobUpdate,
			WorkerID:   w.workerID,
			DispatchID: msg.DispatchID,
			Status:     JobStatusFailed,
			Error:      err.Error(),
		})
		return
	}

	w.logger.Info("dispatch accepted", map[string]interface{}{
		"dispatchId": job.DispatchID,
		"roomName":   job.RoomName,
	})

	_ = conn.WriteJSON(message{
		Type:       MessageTypeJobUpdate,
		WorkerID:   w.workerID,
		DispatchID: job.DispatchID,
		Status:     JobStatusRunning,
	})

	status := JobStatusDone
	errMsg := ""
	if err := w.entrypoint(ctx, job); err != nil {
		status = JobStatusFailed
		errMsg = err.Error()
		w.logger.Error("session entrypoint failed", map[string]interface{}{
			"error":      err.Error(),
			"dispatchId": job.DispatchID,
		})
	}

	_ = conn.WriteJSON(message{
		Type:       MessageTypeJobUpdate,
		WorkerID:   w.workerID,
		DispatchID: job.DispatchID,
		Status:     status,
		Error:      errMsg,
	})
}

func (w *Worker) validateDispatch(job *Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}

	result, err := w.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validate dispatch: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return fmt.Errorf("dispatch payload invalid: %s", strings.Join(details, "; "))
	}
	return nil
}

// agentEndpoint converts the configured platform URL to the websocket agent
// endpoint (https -> wss, http -> ws).
func agentEndpoint(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server url scheme: %s", u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/agent"
	return u.String(), nil
}

// WithDialTimeout wraps the default dialer with a handshake timeout.
func (w *Worker) WithDialTimeout(timeout time.Duration) *Worker {
	w.dial = func(ctx context.Context, wsURL string, header http.Header) (*websocket.Conn, error) {
		dialer := *websocket.DefaultDialer
		dialer.HandshakeTimeout = timeout
		conn, _, err := dialer.DialContext(ctx, wsURL, header)
		return conn, err
	}
	return w
}
