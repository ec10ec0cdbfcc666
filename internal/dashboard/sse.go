package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/UnknownOlympus/plutus/internal/lib/logger/sl"
	"github.com/UnknownOlympus/plutus/internal/live"
	"github.com/UnknownOlympus/plutus/internal/report"
	"github.com/gin-gonic/gin"
)

// handleEvents streams the report of the selected agent and year. A "report" event is
// sent on connect and after every change; "heartbeat" events keep idle proxies open.
func (h *handlers) handleEvents(c *gin.Context) {
	ctx := c.Request.Context()
	log := sl.Op(h.log, "dashboard", "Dashboard.Events")
	agent, year := h.selection(c)
	tracker := live.NewTracker(agent, year, h.now, h.metrics)

	stopTasks, err := h.live.SubscribeTasks(ctx, tracker.SetTasks)
	if err != nil {
		log.ErrorContext(ctx, "Failed to subscribe to tasks", sl.Err(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live updates unavailable"})
		return
	}
	defer stopTasks()

	if agent != report.AllAgents {
		stopGoal, err := h.live.SubscribeGoal(ctx, agent, tracker.SetGoal)
		if err != nil {
			log.ErrorContext(ctx, "Failed to subscribe to goals", "agent", agent, sl.Err(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live updates unavailable"})
			return
		}
		defer stopGoal()
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tracker.Updates():
			if err := writeSSE(c.Writer, "report", tracker.Report()); err != nil {
				log.DebugContext(ctx, "Live stream closed", sl.Err(err))
				return
			}
			c.Writer.Flush()
		case <-heartbeat.C:
			if err := writeSSE(c.Writer, "heartbeat", map[string]string{
				"timestamp": h.now().UTC().Format(time.RFC3339),
			}); err != nil {
				log.DebugContext(ctx, "Live stream closed", sl.Err(err))
				return
			}
			c.Writer.Flush()
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	if _, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return fmt.Errorf("failed to write %s event: %w", event, err)
	}
	return nil
}
