package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-hirestream-backend/internal/delivery/http/middleware"
	"go-hirestream-backend/internal/delivery/http/response"
	"go-hirestream-backend/internal/domain"
	"go-hirestream-backend/internal/realtime"
)

const sseHeartbeatInterval = 25 * time.Second

type RealtimeHandler struct {
	cache *realtime.Cache
}

// NewRealtimeHandler registers the applications live stream
func NewRealtimeHandler(r *gin.RouterGroup, cache *realtime.Cache) {
	handler := &RealtimeHandler{cache: cache}
	r.GET("/realtime/applications", handler.StreamApplications)
}

// StreamApplications serves the enriched applications view over SSE: a
// snapshot event first, then one event per cache update. Candidates see
// their own applications; hiring users see applications to their jobs.
func (h *RealtimeHandler) StreamApplications(c *gin.Context) {
	actor := middleware.Actor(c)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, "Streaming not supported", nil)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	updates, cancel := h.cache.Subscribe()
	defer cancel()

	filter := newStreamFilter(actor)
	var visible []domain.Application
	for _, app := range h.cache.Snapshot() {
		app := app
		if filter.admit(&app) {
			visible = append(visible, app)
		}
	}
	writeSSE(c, flusher, "snapshot", visible)

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return
			}
			if !filter.allow(u) {
				continue
			}
			writeSSE(c, flusher, string(u.Type), u)
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": keepalive\n\n")
			flusher.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

// streamFilter scopes one subscriber's stream. Upserts outside the actor's
// scope are dropped, and evictions are forwarded only for records this
// subscriber was previously shown, so eviction notices never leak ids the
// actor could not see.
type streamFilter struct {
	actor   domain.Actor
	visible map[string]bool
}

func newStreamFilter(actor domain.Actor) *streamFilter {
	return &streamFilter{actor: actor, visible: make(map[string]bool)}
}

// admit reports whether the application belongs in this stream, remembering
// it so a later eviction can be forwarded.
func (f *streamFilter) admit(app *domain.Application) bool {
	if !actorCanSee(f.actor, app) {
		return false
	}
	f.visible[app.ID] = true
	return true
}

func (f *streamFilter) allow(u realtime.Update) bool {
	if u.Type == realtime.UpdateEvict {
		if !f.visible[u.ApplicationID] {
			return false
		}
		delete(f.visible, u.ApplicationID)
		return true
	}
	return u.Application != nil && f.admit(u.Application)
}

func actorCanSee(actor domain.Actor, app *domain.Application) bool {
	switch actor.Role {
	case domain.RoleCandidate:
		return app.CandidateID == actor.UserID
	case domain.RoleHiring:
		return app.Job != nil && app.Job.CreatedBy == actor.UserID
	case domain.RoleOrchestrator:
		return true
	}
	return false
}

func writeSSE(c *gin.Context, flusher http.Flusher, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, payload)
	flusher.Flush()
}
