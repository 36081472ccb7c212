// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/jeranaias/nguvan-tui/internal/llm"
)

// maxLineSize bounds a single NDJSON line.
const maxLineSize = 1024 * 1024

// StreamReader reads newline-delimited JSON chunks.
type StreamReader struct {
	scanner *bufio.Scanner
}

// NewStreamReader creates a stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &StreamReader{scanner: sc}
}

// Next returns the next chunk, skipping blank and malformed lines. Returns io.EOF at the
// end of the stream.
func (s *StreamReader) Next() (*StreamChunk, error) {
	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk StreamChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			// Skip malformed lines
			continue
		}
		return &chunk, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// SendStream implements llm.Session. The turn is recorded in the history
// only when the server reports done.
func (s *Session) SendStream(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		body, err := s.open(ctx, text)
		if err != nil {
			yield("", err)
			return
		}
		defer body.Close()

		reader := NewStreamReader(body)
		var reply strings.Builder
		for {
			chunk, err := reader.Next()
			if err == io.EOF {
				// The server closed without a done chunk.
				yield("", fmt.Errorf("%w: stream ended before done", llm.ErrMalformedStream))
				return
			}
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					err = ctxErr
				}
				yield("", err)
				return
			}
			if chunk.Error != "" {
				yield("", llm.StatusError(Name, 0, "", chunk.Error))
				return
			}

			if content := chunk.Message.Content; content != "" {
				reply.WriteString(content)
				if !yield(content, nil) {
					return
				}
			}
			if chunk.Done {
				s.record(text, reply.String())
				return
			}
		}
	}
}
