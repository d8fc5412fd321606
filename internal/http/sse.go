package httpapi

import (
	"encoding/json"
	"net/http"
)

const streamBuffer = 64

// streamSessionEvents pushes controller events and narration instructions
// to the client as server-sent events until the client disconnects.
func (s *Server) streamSessionEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	cl := s.manager.Client(clientID(r))
	events := cl.Controller.Subscribe(streamBuffer)
	utterances := cl.Relay.Subscribe(streamBuffer)
	defer func() {
		cl.Controller.Unsubscribe(events)
		cl.Relay.Unsubscribe(utterances)
		s.logger.Debug("event stream closed",
			"client_id", cl.ID,
			"event_subscribers", cl.Controller.Subscribers(),
			"narration_subscribers", cl.Relay.Subscribers(),
		)
	}()

	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			writeEvent(w, string(ev.Type), ev)
			flusher.Flush()

		case u, ok := <-utterances:
			if !ok {
				return
			}
			writeEvent(w, "narration", u)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	w.Write([]byte("event: " + name + "\n"))
	w.Write([]byte("data: "))
	w.Write(data)
	w.Write([]byte("\n\n"))
}
