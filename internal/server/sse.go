package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jonathan/contact-harvester/internal/pipeline"
	"github.com/jonathan/contact-harvester/internal/types"
)

// SSE event names on /harvest/stream.
const (
	eventResult   = "result"
	eventComplete = "complete"
)

var errStreamingUnsupported = errors.New("streaming not supported")

// harvestStream writes one harvest run as Server-Sent Events: a "result" event per
// finished company, with the input position as its id, then a single "complete" event.
// After the first failed write the stream is dead and later events are dropped.
type harvestStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	err     error
}

func newHarvestStream(w http.ResponseWriter) (*harvestStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &harvestStream{w: w, flusher: flusher}, nil
}

func (s *harvestStream) result(event pipeline.ProgressEvent) error {
	return s.send(strconv.Itoa(event.Index), eventResult, event)
}

// complete sends the run summary and ends the stream.
func (s *harvestStream) complete(results []types.CompanyResult) error {
	return s.send("", eventComplete, types.Summarize(results))
}

func (s *harvestStream) send(id, event string, payload any) error {
	if s.err != nil {
		return s.err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if id != "" {
		_, s.err = fmt.Fprintf(s.w, "id: %s\n", id)
	}
	if s.err == nil {
		_, s.err = fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data)
	}
	if s.err != nil {
		return s.err
	}
	s.flusher.Flush()
	return nil
}
