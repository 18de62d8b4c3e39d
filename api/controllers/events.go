package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/counterpos/api/responses"
	"github.com/angelmondragon/counterpos/internal/events"
	pkgerrors "github.com/angelmondragon/counterpos/pkg/errors"
	"github.com/angelmondragon/counterpos/pkg/logger"
	"github.com/angelmondragon/counterpos/pkg/types"
)

const (
	eventBuffer      = 32
	eventHeartbeat   = 15 * time.Second
	eventRetryMillis = 3000
	changeEventName  = "change"
)

// EventsStream streams state changes as server-sent events. Slow clients miss
// changes rather than blocking commands.
func EventsStream(bus *events.Bus, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if bus == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event bus unavailable"))
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		changes := make(chan events.Change, eventBuffer)
		unsubscribe := bus.Subscribe(func(c events.Change) {
			select {
			case changes <- c:
			default:
			}
		})
		defer unsubscribe()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "retry: %d\n\n", eventRetryMillis)
		flusher.Flush()

		heartbeat := time.NewTicker(eventHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-heartbeat.C:
				fmt.Fprint(w, ": ping\n\n")
				flusher.Flush()
			case c := <-changes:
				payload, err := json.Marshal(types.ChangeEvent{
					Collection: string(c.Collection),
					Action:     string(c.Action),
					ID:         c.ID,
					At:         c.At.UTC().Format(time.RFC3339Nano),
				})
				if err != nil {
					if logg != nil {
						logg.Error(r.Context(), "encode change event", err)
					}
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", changeEventName, payload)
				flusher.Flush()
			}
		}
	}
}
