// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strconv"
	"strings"

	"github.com/jeranaias/nguvan-tui/internal/llm"
)

// MaxChunkSize is the maximum allowed size for a single SSE event (64KB).
const MaxChunkSize = 64 * 1024

// errChunkTooLarge is returned when an event exceeds MaxChunkSize.
var errChunkTooLarge = errors.New("sse event exceeds maximum size")

// =============================================================================
// STREAM TYPES
// =============================================================================

// StreamChunk is a single chunk of an OpenRouter streaming response.
type StreamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
			Role    string `json:"role,omitempty"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`

	// Error is set when the upstream model fails mid-stream.
	Error *struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"error,omitempty"`
}

// GetContent returns the content from the first choice's delta.
func (c *StreamChunk) GetContent() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].Delta.Content
	}
	return ""
}

// IsDone returns true if the chunk carries a finish reason.
func (c *StreamChunk) IsDone() bool {
	return c.GetFinishReason() != ""
}

// GetFinishReason returns the finish reason, or "" while streaming.
func (c *StreamChunk) GetFinishReason() string {
	if len(c.Choices) > 0 && c.Choices[0].FinishReason != nil {
		return *c.Choices[0].FinishReason
	}
	return ""
}

// StreamError is a failure after part of the reply was received.
type StreamError struct {
	Partial string // content received before the error
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// SSE READER
// =============================================================================

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{reader: bufio.NewReader(r)}
}

// ReadEvent reads the next event and returns its type and data. Multiple
// data lines are joined with "\n". Comment lines (": keep-alive") and the
// id and retry fields are ignored. Returns io.EOF when the stream ends.
func (s *SSEReader) ReadEvent() (string, []byte, error) {
	var eventType string
	var dataLines [][]byte
	size := 0

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil && (err != io.EOF || len(line) == 0) {
			if err == io.EOF && len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			return "", nil, err
		}
		eof := err == io.EOF

		line = bytes.TrimRight(line, "\r\n")

		if len(line) == 0 {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			if eof {
				return "", nil, io.EOF
			}
			continue
		}

		switch {
		case bytes.HasPrefix(line, []byte("event:")):
			eventType = string(bytes.TrimSpace(line[6:]))
		case bytes.HasPrefix(line, []byte("data:")):
			data := bytes.TrimPrefix(line[5:], []byte(" "))
			size += len(data)
			if size > MaxChunkSize {
				return "", nil, errChunkTooLarge
			}
			dataLines = append(dataLines, data)
		}

		if eof {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			return "", nil, io.EOF
		}
	}
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// SendStream implements llm.Session. The turn is recorded in the history
// only after the stream ends cleanly.
func (s *Session) SendStream(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		body, err := s.open(ctx, text)
		if err != nil {
			yield("", err)
			return
		}
		defer body.Close()

		var reply strings.Builder
		for frag, err := range readStream(ctx, body) {
			if err != nil {
				if reply.Len() > 0 {
					err = &StreamError{Partial: reply.String(), Err: err}
				}
				yield("", err)
				return
			}
			reply.WriteString(frag)
			if !yield(frag, nil) {
				return
			}
		}
		s.record(text, reply.String())
	}
}

// open posts the request and returns the event stream body.
func (s *Session) open(ctx context.Context, text string) (io.ReadCloser, error) {
	reqBody, err := json.Marshal(ChatRequest{
		Model:    s.model,
		Messages: s.messagesFor(text),
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := s.provider.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	s.provider.setHeaders(req, s.apiKey)

	resp, err := s.provider.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodySize))
		return nil, handleErrorResponse(resp.StatusCode, body)
	}
	return resp.Body, nil
}

// readStream yields content fragments until [DONE] or a finish reason. A
// body that ends before either is a malformed stream.
func readStream(ctx context.Context, body io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		reader := NewSSEReader(body)
		for {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}

			_, data, err := reader.ReadEvent()
			if err == io.EOF {
				yield("", fmt.Errorf("%w: stream ended before [DONE]", llm.ErrMalformedStream))
				return
			}
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					err = ctxErr
				}
				yield("", err)
				return
			}

			if bytes.Equal(data, []byte("[DONE]")) {
				return
			}

			var chunk StreamChunk
			if err := json.Unmarshal(data, &chunk); err != nil {
				// Skip malformed chunks
				continue
			}
			if chunk.Error != nil {
				yield("", handleStreamError(&chunk))
				return
			}

			if content := chunk.GetContent(); content != "" {
				if !yield(content, nil) {
					return
				}
			}
			if chunk.IsDone() {
				return
			}
		}
	}
}

// handleStreamError converts an error chunk. Numeric codes are HTTP statuses.
func handleStreamError(chunk *StreamChunk) error {
	code := errorCode(chunk.Error.Code)
	if status, err := strconv.Atoi(code); err == nil {
		return llm.StatusError(Name, status, "", chunk.Error.Message)
	}
	return llm.StatusError(Name, 0, code, chunk.Error.Message)
}
