package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	System   string
	Messages []Message
}

// Stream yields text deltas in arrival order. Next returns io.EOF once the
// upstream message is complete. Close releases the connection and may be
// called at any point.
type Stream interface {
	Next() (string, error)
	Close() error
}

// ChatClient opens streaming chat completions.
type ChatClient interface {
	StreamChat(ctx context.Context, req ChatRequest) (Stream, error)
}

type messagesClient struct {
	cfg      LLMConfig
	api      anthropic.Client
	observer Observer
}

// NewMessagesClient streams from the Messages API. Calls fail with
// ErrNotConfigured while cfg has no API key.
func NewMessagesClient(cfg LLMConfig, observer Observer) ChatClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	httpClient := &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 5 * time.Second,
			}).DialContext,
			ResponseHeaderTimeout: 30 * time.Second,
		},
	}
	return &messagesClient{
		cfg: cfg,
		api: anthropic.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.Endpoint+"/"),
			option.WithHeader("anthropic-version", cfg.APIVersion),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		),
		observer: observer,
	}
}

func (c *messagesClient) StreamChat(ctx context.Context, req ChatRequest) (Stream, error) {
	if !c.cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		Messages:  messageParams(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	events := c.api.Messages.NewStreaming(ctx, params)

	// The first read surfaces transport and status failures before any byte
	// is relayed, so callers can still answer with a plain error.
	primed := events.Next()
	if !primed {
		if err := events.Err(); err != nil {
			events.Close()
			cancel()
			err = classifyStreamError(ctx, err)
			c.report(start, 0, err)
			return nil, err
		}
	}

	return &eventStream{
		ctx:     ctx,
		cancel:  cancel,
		events:  events,
		pending: primed,
		finish: func(chunks int, err error) {
			c.report(start, chunks, err)
		},
	}, nil
}

func messageParams(messages []Message) []anthropic.MessageParam {
	params := make([]anthropic.MessageParam, 0, len(messages))
	for _, message := range messages {
		block := anthropic.NewTextBlock(message.Content)
		if message.Role == RoleAssistant {
			params = append(params, anthropic.NewAssistantMessage(block))
			continue
		}
		params = append(params, anthropic.NewUserMessage(block))
	}
	return params
}

func (c *messagesClient) report(start time.Time, chunks int, err error) {
	c.observer.OnCallComplete(LLMCallEvent{
		Model:     c.cfg.Model,
		LatencyMs: time.Since(start).Milliseconds(),
		Chunks:    chunks,
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
}

// eventStream turns SDK stream events into text deltas. pending is set while
// the event read during StreamChat has not been handed out yet.
type eventStream struct {
	ctx     context.Context
	cancel  context.CancelFunc
	events  *ssestream.Stream[anthropic.MessageStreamEventUnion]
	pending bool
	finish  func(chunks int, err error)

	chunks   int
	finished bool
	once     sync.Once
}

func (s *eventStream) Next() (string, error) {
	if s.finished {
		return "", io.EOF
	}

	for s.pending || s.events.Next() {
		s.pending = false
		switch event := s.events.Current().AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := event.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				s.chunks++
				return delta.Text, nil
			}
		case anthropic.MessageStopEvent:
			s.complete(nil)
			return "", io.EOF
		}
	}

	if err := s.events.Err(); err != nil {
		return "", s.fail(classifyStreamError(s.ctx, err))
	}
	// The connection closed without message_stop; treat what arrived as complete.
	s.complete(nil)
	return "", io.EOF
}

func (s *eventStream) fail(err error) error {
	s.complete(err)
	return err
}

func (s *eventStream) complete(err error) {
	s.finished = true
	s.once.Do(func() {
		s.finish(s.chunks, err)
	})
}

func (s *eventStream) Close() error {
	if !s.finished {
		s.complete(context.Canceled)
	}
	err := s.events.Close()
	s.cancel()
	return err
}

// classifyStreamError maps SDK failures onto the package errors. Error events
// sent inside an open stream end up as ErrStreamFailed with their payload.
func classifyStreamError(ctx context.Context, err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: status %d", ErrUpstreamStatus, apiErr.StatusCode)
	}
	return classifyTransportError(ctx, err)
}

func classifyTransportError(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ErrTimeout
	case ctx.Err() != nil:
		return ctx.Err()
	case isConnectionError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrStreamFailed, err)
	}
}

func isConnectionError(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrUpstreamStatus):
		return "STATUS"
	case errors.Is(err, context.Canceled):
		return "CANCELED"
	case errors.Is(err, ErrStreamFailed):
		return "STREAM"
	default:
		return "UNKNOWN"
	}
}
