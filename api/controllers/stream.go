package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/nexwaste/nexwaste-backend/internal/pickups"
	"github.com/nexwaste/nexwaste-backend/pkg/logger"
	"github.com/nexwaste/nexwaste-backend/pkg/metrics"
)

// snapshotStream pushes record snapshots to the client as server-sent
// events until the client disconnects or the channel closes.
func snapshotStream(w http.ResponseWriter, r *http.Request, logg *logger.Logger, httpMetrics *metrics.HTTPMetrics, snapshots <-chan []pickups.PickupRecord) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	httpMetrics.StreamOpened()
	defer httpMetrics.StreamClosed()

	for {
		select {
		case <-r.Context().Done():
			return
		case records, open := <-snapshots:
			if !open {
				return
			}
			payload, err := json.Marshal(records)
			if err != nil {
				logg.Error(r.Context(), "encoding snapshot event", err)
				return
			}
			if _, err := w.Write([]byte("event: snapshot\ndata: ")); err != nil {
				return
			}
			if _, err := w.Write(payload); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
