package llm

import (
	"fmt"
	"io"
	"time"
)

// LLMCallEvent records one finished streaming call.
type LLMCallEvent struct {
	Model     string
	LatencyMs int64
	Chunks    int
	Success   bool
	ErrorCode string
}

type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

// LogObserver writes one line per call to w.
type LogObserver struct {
	w io.Writer
}

func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{w: w}
}

func (o *LogObserver) OnCallComplete(event LLMCallEvent) {
	ts := time.Now().UTC().Format(time.RFC3339)
	status := "ok"
	if !event.Success {
		status = "err:" + event.ErrorCode
	}
	fmt.Fprintf(o.w, "[%s] llm_call model=%s latency_ms=%d chunks=%d status=%s\n",
		ts, event.Model, event.LatencyMs, event.Chunks, status)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}
