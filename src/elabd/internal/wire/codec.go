// Package wire frames and parses the JSON-RPC envelopes exchanged with the checker process.
//
// Frames use the LSP base protocol: a "Content-Length" header, an empty line, and a JSON body.
// A malformed frame is reported as an *errors.ProtocolError and skipped; the decoder then
// resynchronizes on the next header, so a single bad frame never ends the stream.
package wire

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	elabderrors "github.com/uber/elabd/src/elabd/internal/errors"
	"go.lsp.dev/jsonrpc2"
)

const (
	_headerContentLength = "Content-Length"
	_headerSeparator     = "\r\n"

	// MaxFrameSize bounds the body of a single frame.
	MaxFrameSize = 64 << 20

	// _maxHeaderLine bounds a header line. Only the tail of a longer line is kept, for resynchronizing.
	_maxHeaderLine = 4096
)

// Encode frames msg for the wire.
func Encode(msg jsonrpc2.Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshaling message: %w", err)
	}

	out := make([]byte, 0, len(body)+32)
	out = fmt.Appendf(out, "%s: %d%s%s", _headerContentLength, len(body), _headerSeparator, _headerSeparator)
	return append(out, body...), nil
}

// Encoder writes framed messages to a stream. It is safe for concurrent use; frames are never interleaved.
type Encoder struct {
	mu sync.Mutex
	w  io.Writer
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Write frames and writes a single message.
func (e *Encoder) Write(msg jsonrpc2.Message) error {
	data, err := Encode(msg)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.w.Write(data); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// Decoder reads framed messages from a stream.
type Decoder struct {
	r      *bufio.Reader
	offset int64
	resync bool

	// pending is a truncated line to scan again once the frame it broke has been reported.
	pending    string
	hasPending bool
}

// NewDecoder returns a Decoder reading from r. Partial reads are buffered until a whole frame is available.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 64*1024)}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int64 {
	return d.offset
}

// Next returns the next message on the stream.
// An *errors.ProtocolError means one frame was discarded and Next may be called again.
// Any other error (including io.EOF) means the stream is finished.
func (d *Decoder) Next() (jsonrpc2.Message, error) {
	frameStart := d.offset
	length, err := d.readHeaders()
	if err != nil {
		return nil, err
	}

	body := make([]byte, length)
	n, err := io.ReadFull(d.r, body)
	d.offset += int64(n)
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}

	msg, err := jsonrpc2.DecodeMessage(body)
	if err != nil {
		return nil, &elabderrors.ProtocolError{Offset: frameStart, Reason: "invalid message body", Err: err}
	}
	return msg, nil
}

// readHeaders consumes a header block and returns the announced body length.
func (d *Decoder) readHeaders() (int, error) {
	start := d.offset
	length := -1
	sawHeader := false

	for {
		line, truncated, err := d.readLine()
		if err != nil {
			return 0, err
		}

		if truncated && !d.resync {
			d.resync = true
			d.pending, d.hasPending = line, true
			return 0, &elabderrors.ProtocolError{Offset: start, Reason: fmt.Sprintf("header line longer than %d bytes", _maxHeaderLine)}
		}

		if d.resync {
			idx := strings.Index(strings.ToLower(line), strings.ToLower(_headerContentLength)+":")
			if idx < 0 {
				continue
			}
			line = line[idx:]
			d.resync = false
		}

		if line == "" {
			if !sawHeader {
				// Tolerate stray blank lines between frames.
				continue
			}
			break
		}
		sawHeader = true

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			d.resync = true
			return 0, &elabderrors.ProtocolError{Offset: start, Reason: fmt.Sprintf("malformed header %q", line)}
		}

		if strings.EqualFold(strings.TrimSpace(key), _headerContentLength) {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 0 || n > MaxFrameSize {
				d.resync = true
				return 0, &elabderrors.ProtocolError{Offset: start, Reason: fmt.Sprintf("invalid content length %q", strings.TrimSpace(value)), Err: err}
			}
			length = n
		}
	}

	if length < 0 {
		d.resync = true
		return 0, &elabderrors.ProtocolError{Offset: start, Reason: "missing Content-Length header"}
	}
	return length, nil
}

// readLine returns the next header line without its line terminator.
// A line longer than _maxHeaderLine is consumed whole, but only its tail is returned and truncated is set.
func (d *Decoder) readLine() (line string, truncated bool, err error) {
	if d.hasPending {
		line, d.pending, d.hasPending = d.pending, "", false
		return line, false, nil
	}

	var buf []byte
	for {
		chunk, readErr := d.r.ReadSlice('\n')
		d.offset += int64(len(chunk))
		buf = append(buf, chunk...)
		if len(buf) > _maxHeaderLine {
			buf = append(buf[:0], buf[len(buf)-_maxHeaderLine:]...)
			truncated = true
		}
		if readErr == bufio.ErrBufferFull {
			continue
		}
		if readErr != nil {
			return "", false, readErr
		}
		return strings.TrimRight(string(buf), "\r\n"), truncated, nil
	}
}
