// Package ipc implements length-prefixed msgpack framing for reload
// event streams between the watch command and an embedding host process.
package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/webasset/notify"
)

// Frame size constants.
const (
	// MaxFrameSize is the maximum frame size (1 MiB), including length prefix.
	// Reload events are small; anything larger indicates a corrupt stream.
	MaxFrameSize = 1024 * 1024
	// MaxPayloadSize is the maximum payload size (MaxFrameSize - 4 bytes).
	MaxPayloadSize = MaxFrameSize - LengthPrefixSize
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4
)

// FrameErrorKind classifies frame errors.
type FrameErrorKind int

const (
	// FrameErrorPartial indicates a truncated or incomplete frame.
	FrameErrorPartial FrameErrorKind = iota
	// FrameErrorTooLarge indicates a frame exceeding MaxFrameSize.
	FrameErrorTooLarge
	// FrameErrorDecode indicates a msgpack decoding error.
	FrameErrorDecode
)

// FrameError represents a frame encoding or decoding error.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsFatal returns true if this error is fatal (terminate the stream).
// Partial and oversized frames leave the stream unsynchronized.
func (e *FrameError) IsFatal() bool {
	return e.Kind == FrameErrorPartial || e.Kind == FrameErrorTooLarge
}

// IsFatalFrameError returns true if the error is a fatal frame error.
func IsFatalFrameError(err error) bool {
	var frameErr *FrameError
	if errors.As(err, &frameErr) {
		return frameErr.IsFatal()
	}
	return false
}

// FrameEncoder writes length-prefixed msgpack frames to a stream.
type FrameEncoder struct {
	writer io.Writer
}

// NewFrameEncoder creates a new frame encoder.
func NewFrameEncoder(w io.Writer) *FrameEncoder {
	return &FrameEncoder{writer: w}
}

// WriteEvent encodes a reload event and writes it as a single frame.
func (e *FrameEncoder) WriteEvent(event *notify.ReloadEvent) error {
	payload, err := msgpack.Marshal(event)
	if err != nil {
		return &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to encode reload event",
			Err:  err,
		}
	}

	if len(payload) > MaxPayloadSize {
		return &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", len(payload), MaxPayloadSize),
		}
	}

	var lengthBuf [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(lengthBuf[:], uint32(len(payload)))

	if _, err := e.writer.Write(lengthBuf[:]); err != nil {
		return &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to write length prefix",
			Err:  err,
		}
	}
	if _, err := e.writer.Write(payload); err != nil {
		return &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to write payload",
			Err:  err,
		}
	}

	return nil
}

// FrameDecoder decodes length-prefixed msgpack frames from a stream.
type FrameDecoder struct {
	reader io.Reader
}

// NewFrameDecoder creates a new frame decoder.
func NewFrameDecoder(r io.Reader) *FrameDecoder {
	return &FrameDecoder{reader: r}
}

// ReadFrame reads a single frame from the stream.
// Returns the raw payload bytes (msgpack-encoded).
//
// Errors:
//   - io.EOF: stream ended cleanly (no more frames)
//   - *FrameError with Kind=FrameErrorPartial: incomplete frame (fatal)
//   - *FrameError with Kind=FrameErrorTooLarge: frame exceeds limit (fatal)
func (d *FrameDecoder) ReadFrame() ([]byte, error) {
	// Read 4-byte big-endian length prefix
	var lengthBuf [LengthPrefixSize]byte
	_, err := io.ReadFull(d.reader, lengthBuf[:])
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		// Partial read of length prefix
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read length prefix",
			Err:  err,
		}
	}

	payloadSize := binary.BigEndian.Uint32(lengthBuf[:])

	if payloadSize > MaxPayloadSize {
		return nil, &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", payloadSize, MaxPayloadSize),
		}
	}

	// Read payload
	payload := make([]byte, payloadSize)
	_, err = io.ReadFull(d.reader, payload)
	if err != nil {
		return nil, &FrameError{
			Kind: FrameErrorPartial,
			Msg:  "failed to read payload",
			Err:  err,
		}
	}

	return payload, nil
}

// ReadEvent reads a single frame and decodes it as a reload event.
func (d *FrameDecoder) ReadEvent() (*notify.ReloadEvent, error) {
	payload, err := d.ReadFrame()
	if err != nil {
		return nil, err
	}
	return DecodeEvent(payload)
}

// DecodeEvent decodes a payload as a reload event.
func DecodeEvent(payload []byte) (*notify.ReloadEvent, error) {
	var event notify.ReloadEvent
	if err := msgpack.Unmarshal(payload, &event); err != nil {
		return nil, &FrameError{
			Kind: FrameErrorDecode,
			Msg:  "failed to decode reload event",
			Err:  err,
		}
	}
	return &event, nil
}
