// Package remote streams transcript events from a local speech-recognition
// daemon over a websocket. The daemon owns the recognition engine; this
// client only decodes its JSON frames into transcript events.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jinzhu/copier"
	"github.com/prismkit/prism-core/core/events"
	"github.com/prismkit/prism-core/core/speechtotext"
)

const keepAliveInterval = 5 * time.Second

// TranscriptionClient consumes a recognition daemon's websocket feed.
type TranscriptionClient struct {
	url    string
	header http.Header

	connMu sync.Mutex
	conn   *websocket.Conn
}

type Option func(*TranscriptionClient)

// WithHeader adds a header to the websocket handshake (auth tokens).
func WithHeader(key, value string) Option {
	return func(c *TranscriptionClient) { c.header.Set(key, value) }
}

func NewTranscriptionClient(url string, opts ...Option) *TranscriptionClient {
	client := &TranscriptionClient{url: url, header: http.Header{}}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Transcribe connects to the daemon and starts delivering transcript events
// through the configured callbacks until the context ends or the connection
// drops.
func (c *TranscriptionClient) Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error {
	options := &speechtotext.TranscriptionOptions{}
	for _, opt := range opts {
		opt(options)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, c.header)
	if err != nil {
		return fmt.Errorf("failed to open socket connection to recognition daemon: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	// The read loop owns its own copy so later option mutation cannot race.
	callbackOptions := speechtotext.TranscriptionOptions{}
	if err := copier.Copy(&callbackOptions, options); err != nil {
		conn.Close()
		return fmt.Errorf("failed to copy transcription options: %w", err)
	}

	go c.keepAlive(ctx)
	go c.readAndProcessMessages(ctx, conn, callbackOptions)

	return nil
}

// StartUtterance tells the daemon to begin a new utterance with the given id.
func (c *TranscriptionClient) StartUtterance(id uuid.UUID) error {
	return c.writeJSON(controlMessage{Type: "StartUtterance", UtteranceID: id.String()})
}

// SendFrame forwards captured samples for the current utterance.
func (c *TranscriptionClient) SendFrame(frame events.AudioFrame) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("transcription client is not connected")
	}

	payload, err := json.Marshal(audioMessage{
		Type:       "Audio",
		Samples:    frame.Samples,
		SampleRate: frame.SampleRate,
		FrameIndex: frame.FrameIndex,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal audio frame: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("failed to write to recognition daemon: %w", err)
	}
	return nil
}

// EndUtterance tells the daemon to finalize the current utterance.
func (c *TranscriptionClient) EndUtterance() error {
	return c.writeJSON(controlMessage{Type: "EndUtterance"})
}

func (c *TranscriptionClient) Close(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return nil
	}

	err := c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	closeErr := c.conn.Close()
	c.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close recognition daemon connection: %w", err)
	}
	return closeErr
}

func (c *TranscriptionClient) writeJSON(message any) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("transcription client is not connected")
	}
	if err := c.conn.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to write to recognition daemon: %w", err)
	}
	return nil
}

func (c *TranscriptionClient) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.writeJSON(controlMessage{Type: "KeepAlive"}); err != nil {
				return
			}
		}
	}
}

func (c *TranscriptionClient) readAndProcessMessages(ctx context.Context, conn *websocket.Conn, options speechtotext.TranscriptionOptions) {
	defer func() {
		c.connMu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.connMu.Unlock()
		conn.Close()
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure) {
				logger.WarnContext(ctx, "failed to read recognition daemon message", "error", err)
				if options.ErrorCallback != nil {
					options.ErrorCallback(err)
				}
			}
			return
		}

		c.processMessage(ctx, msg, options)
	}
}

func (c *TranscriptionClient) processMessage(ctx context.Context, msg []byte, options speechtotext.TranscriptionOptions) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		logger.WarnContext(ctx, "failed to unmarshal recognition daemon message", "error", err)
		return
	}

	switch parsedMsg.Type {
	case "Transcript":
		var transcript transcriptMessage
		if err := json.Unmarshal(msg, &transcript); err != nil {
			logger.WarnContext(ctx, "failed to unmarshal transcript message", "error", err)
			return
		}
		if options.TranscriptCallback == nil {
			return
		}

		event, err := transcript.toEvent()
		if err != nil {
			logger.WarnContext(ctx, "discarding malformed transcript message", "error", err)
			return
		}
		options.TranscriptCallback(event)

	case "SpeechStarted":
		if options.SpeechStartedCallback != nil {
			options.SpeechStartedCallback()
		}

	case "SpeechEnded":
		if options.SpeechEndedCallback != nil {
			options.SpeechEndedCallback()
		}
	}
}

type controlMessage struct {
	Type        string `json:"type"`
	UtteranceID string `json:"utterance_id,omitempty"`
}

type audioMessage struct {
	Type       string    `json:"type"`
	Samples    []float32 `json:"samples"`
	SampleRate float64   `json:"sample_rate"`
	FrameIndex int       `json:"frame_index"`
}

type transcriptMessage struct {
	Type        string   `json:"type"`
	Text        string   `json:"text"`
	IsFinal     bool     `json:"is_final"`
	Confidence  *float64 `json:"confidence,omitempty"`
	TimestampMS int64    `json:"timestamp_ms"`
	UtteranceID string   `json:"utterance_id"`
}

func (m transcriptMessage) toEvent() (events.TranscriptEvent, error) {
	utteranceID, err := uuid.Parse(m.UtteranceID)
	if err != nil {
		return events.TranscriptEvent{}, fmt.Errorf("invalid utterance id %q: %w", m.UtteranceID, err)
	}

	timestamp := time.Now()
	if m.TimestampMS > 0 {
		timestamp = time.UnixMilli(m.TimestampMS)
	}

	return events.TranscriptEvent{
		Text:        m.Text,
		IsFinal:     m.IsFinal,
		Confidence:  m.Confidence,
		Timestamp:   timestamp,
		UtteranceID: utteranceID,
	}, nil
}
