// internal/agent/worker_test.go
package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"interview-backend/internal/common/config"
	"interview-backend/internal/common/logger"
	"interview-backend/internal/livekit"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Platform Server
// ==========================

// fakePlatform is a minimal websocket endpoint standing in for the real-time
// platform: it accepts one worker, plays back a scripted list of messages,
// and records everything the worker sends until expectMessages have arrived.
type fakePlatform struct {
	server   *httptest.Server
	script   []message
	authSeen chan string

	mu       sync.Mutex
	received []message
	expect   int
	done     chan struct{}
	doneOnce sync.Once
}

func newFakePlatform(t *testing.T, expectMessages int, script []message) *fakePlatform {
	t.Helper()

	fp := &fakePlatform{
		script:   script,
		expect:   expectMessages,
		authSeen: make(chan string, 1),
		done:     make(chan struct{}),
	}

	upgrader := websocket.Upgrader{}
	fp.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fp.authSeen <- r.Header.Get("Authorization")

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		// First message must be the registration.
		var reg message
		require.NoError(t, conn.ReadJSON(&reg))
		fp.record(reg)

		require.NoError(t, conn.WriteJSON(message{Type: MessageTypeRegistered}))
		for _, msg := range fp.script {
			require.NoError(t, conn.WriteJSON(msg))
		}

		// Collect worker replies until it hangs up.
		for {
			var msg message
			if err := conn.ReadJSON(&msg); err != nil {
				fp.doneOnce.Do(func() { close(fp.done) })
				return
			}
			fp.record(msg)
		}
	}))

	t.Cleanup(fp.server.Close)
	return fp
}

func (fp *fakePlatform) record(msg message) {
	fp.mu.Lock()
	fp.received = append(fp.received, msg)
	count := len(fp.received)
	fp.mu.Unlock()

	if count >= fp.expect {
		fp.doneOnce.Do(func() { close(fp.done) })
	}
}

func (fp *fakePlatform) messages() []message {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	out := make([]message, len(fp.received))
	copy(out, fp.received)
	return out
}

func (fp *fakePlatform) waitForMessages(t *testing.T) {
	t.Helper()
	select {
	case <-fp.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected %d worker messages, got %d", fp.expect, len(fp.messages()))
	}
}

func testTokenSource() *livekit.TokenService {
	return livekit.NewTokenService(config.LiveKitConfig{
		URL:       "wss://interviews.livekit.example.com",
		APIKey:    "api-key",
		APISecret: "api-secret",
		AgentName: "interview-agent",
		TokenTTL:  15,
	})
}

// runWorker starts the worker against the fake platform, waits for the
// expected replies, then cancels and joins.
func runWorker(t *testing.T, fp *fakePlatform, entrypoint Entrypoint) {
	t.Helper()

	w, err := NewWorker(fp.server.URL, "interview-agent", testTokenSource(), entrypoint, logger.NewNoOpLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	fp.waitForMessages(t)
	cancel()

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

// ==========================
// Dispatch Handling Tests
// ==========================

func TestWorker_RegistersAndRunsDispatch(t *testing.T) {
	fp := newFakePlatform(t, 3, []message{
		{
			Type:       MessageTypeDispatch,
			DispatchID: "disp-1",
			RoomName:   "voice_assistant_room_42",
			AgentName:  "interview-agent",
			Metadata:   `{"resume_text":"five years of backend work"}`,
		},
	})

	var (
		mu      sync.Mutex
		handled *Job
	)
	runWorker(t, fp, func(ctx context.Context, job *Job) error {
		mu.Lock()
		handled = job
		mu.Unlock()
		return nil
	})

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, handled)
	assert.Equal(t, "disp-1", handled.DispatchID)
	assert.Equal(t, "voice_assistant_room_42", handled.RoomName)

	resume, err := handled.ResumeContext()
	require.NoError(t, err)
	assert.Equal(t, "five years of backend work", resume)

	msgs := fp.messages()
	require.Len(t, msgs, 3)

	// Registration carries the agent name and a worker identity
	assert.Equal(t, MessageTypeRegister, msgs[0].Type)
	assert.Equal(t, "interview-agent", msgs[0].AgentName)
	assert.True(t, strings.HasPrefix(msgs[0].WorkerID, "AW_"))

	assert.Equal(t, []string{JobStatusRunning, JobStatusDone}, jobStatuses(msgs, "disp-1"))

	auth := <-fp.authSeen
	assert.True(t, strings.HasPrefix(auth, "Bearer "))
}

func TestWorker_EntrypointFailureReported(t *testing.T) {
	fp := newFakePlatform(t, 3, []message{
		{Type: MessageTypeDispatch, DispatchID: "disp-2", RoomName: "voice_assistant_room_7"},
	})

	runWorker(t, fp, func(ctx context.Context, job *Job) error {
		return assert.AnError
	})

	msgs := fp.messages()
	assert.Equal(t, []string{JobStatusRunning, JobStatusFailed}, jobStatuses(msgs, "disp-2"))

	last := lastUpdate(msgs, "disp-2")
	require.NotNil(t, last)
	assert.NotEmpty(t, last.Error)
}

func TestWorker_RejectsInvalidDispatch(t *testing.T) {
	// Missing room_name fails schema validation before the entrypoint runs.
	fp := newFakePlatform(t, 2, []message{
		{Type: MessageTypeDispatch, DispatchID: "disp-3"},
	})

	var called bool
	runWorker(t, fp, func(ctx context.Context, job *Job) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.Equal(t, []string{JobStatusFailed}, jobStatuses(fp.messages(), "disp-3"))
}

func TestWorker_RespondsToPing(t *testing.T) {
	fp := newFakePlatform(t, 4, []message{
		{Type: MessageTypePing},
		{Type: MessageTypeDispatch, DispatchID: "disp-4", RoomName: "voice_assistant_room_9"},
	})

	runWorker(t, fp, func(ctx context.Context, job *Job) error {
		return nil
	})

	var sawPong bool
	for _, msg := range fp.messages() {
		if msg.Type == MessageTypePong {
			sawPong = true
		}
	}
	assert.True(t, sawPong)
}

func TestWorker_UnsignedTokenSource(t *testing.T) {
	unconfigured := livekit.NewTokenService(config.LiveKitConfig{})

	w, err := NewWorker("https://interviews.livekit.example.com", "interview-agent",
		unconfigured, func(ctx context.Context, job *Job) error { return nil },
		logger.NewNoOpLogger())
	require.NoError(t, err)

	err = w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sign worker token")
}

// ==========================
// Helpers
// ==========================

func jobStatuses(msgs []message, dispatchID string) []string {
	var statuses []string
	for _, msg := range msgs {
		if msg.Type == MessageTypeJobUpdate && msg.DispatchID == dispatchID {
			statuses = append(statuses, msg.Status)
		}
	}
	return statuses
}

func lastUpdate(msgs []message, dispatchID string) *message {
	var last *message
	for i := range msgs {
		if msgs[i].Type == MessageTypeJobUpdate && msgs[i].DispatchID == dispatchID {
			last = &msgs[i]
		}
	}
	return last
}

// ==========================
// Job and Endpoint Tests
// ==========================

func TestJob_ResumeContext(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
		want     string
		wantErr  bool
	}{
		{"with resume", `{"resume_text":"golang, postgres"}`, "golang, postgres", false},
		{"empty metadata", "", "", false},
		{"no resume field", `{"other":"x"}`, "", false},
		{"malformed json", `{not json`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &Job{Metadata: tt.metadata}
			got, err := job.ResumeContext()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAgentEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"https", "https://platform.example.com", "wss://platform.example.com/agent", false},
		{"http", "http://localhost:7880", "ws://localhost:7880/agent", false},
		{"wss passthrough", "wss://platform.example.com", "wss://platform.example.com/agent", false},
		{"trailing slash", "https://platform.example.com/", "wss://platform.example.com/agent", false},
		{"bad scheme", "ftp://platform.example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := agentEndpoint(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
