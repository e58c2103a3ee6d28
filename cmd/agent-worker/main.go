// cmd/agent-worker/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"interview-backend/internal/agent"
	"interview-backend/internal/common/config"
	"interview-backend/internal/common/logger"
	"interview-backend/internal/livekit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	if !cfg.LiveKit.Configured() {
		zapLog.Fatal("real-time platform credentials are not configured",
			zap.String("hint", "set LIVEKIT_URL, LIVEKIT_API_KEY and LIVEKIT_API_SECRET"))
	}

	tokens := livekit.NewTokenService(cfg.LiveKit)

	worker, err := agent.NewWorker(cfg.LiveKit.URL, cfg.LiveKit.AgentName, tokens, sessionEntrypoint(log), log)
	if err != nil {
		zapLog.Fatal("worker init failed", zap.Error(err))
	}
	worker.WithDialTimeout(15 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zapLog.Info("Starting agent worker...",
		zap.String("agentName", cfg.LiveKit.AgentName),
		zap.String("serverUrl", cfg.LiveKit.URL),
	)

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		zapLog.Fatal("agent worker stopped", zap.Error(err))
	}

	zapLog.Info("Agent worker stopped gracefully")
}

// sessionEntrypoint accepts one interview session. The voice pipeline runs
// platform-side once the agent joins the room; this side validates the
// dispatch and surfaces the candidate context that was attached to it.
func sessionEntrypoint(log logger.Logger) agent.Entrypoint {
	return func(ctx context.Context, job *agent.Job) error {
		resumeText, err := job.ResumeContext()
		if err != nil {
			return err
		}

		log.Info("interview session accepted", map[string]interface{}{
			"dispatchId":       job.DispatchID,
			"roomName":         job.RoomName,
			"hasResumeContext": resumeText != "",
		})
		return nil
	}
}
