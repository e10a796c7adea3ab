package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// MaxMessageSize caps a single framed message. Scripts are the largest
// payload we expect; 4 MiB leaves generous headroom.
const MaxMessageSize = 4 << 20

// Codec frames JSON messages over a byte stream as one document per
// newline-terminated line. TCP gives no message boundaries, so a reader
// must not assume one message per read call; the line framing makes
// fragmented and coalesced writes decode identically.
type Codec struct {
	r *bufio.Reader
	w io.Writer
}

// NewCodec wraps a stream in a Codec.
func NewCodec(rw io.ReadWriter) *Codec {
	return &Codec{
		r: bufio.NewReaderSize(rw, 64<<10),
		w: rw,
	}
}

// Write sends one message followed by a newline in a single call.
func (c *Codec) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	b = append(b, '\n')
	if _, err := c.w.Write(b); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// ReadRequest reads the next framed request. A malformed line is returned
// as a MalformedError so the caller can answer with an error response
// while keeping the connection open.
func (c *Codec) ReadRequest() (*Request, error) {
	line, err := c.readLine()
	if err != nil {
		return nil, err
	}
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return nil, &MalformedError{Err: err}
	}
	return &req, nil
}

// ReadResponse reads the next framed response.
func (c *Codec) ReadResponse() (*Response, error) {
	line, err := c.readLine()
	if err != nil {
		return nil, err
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, &MalformedError{Err: err}
	}
	return &resp, nil
}

func (c *Codec) readLine() ([]byte, error) {
	var line []byte
	for {
		chunk, err := c.r.ReadSlice('\n')
		line = append(line, chunk...)
		if err == nil {
			break
		}
		if err == bufio.ErrBufferFull {
			if len(line) > MaxMessageSize {
				return nil, fmt.Errorf("message exceeds %d bytes", MaxMessageSize)
			}
			continue
		}
		return nil, err
	}
	return line, nil
}

// MalformedError marks input that framed correctly but failed to decode
// as JSON. The connection remains usable after one.
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string {
	return "invalid JSON: " + e.Err.Error()
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}
