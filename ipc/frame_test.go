package ipc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/pithecene-io/webasset/notify"
)

func TestFrameRoundTrip_SingleEvent(t *testing.T) {
	event := notify.NewReloadEvent("/project/assets", "sprites/hero.png", 1)

	var buf bytes.Buffer
	encoder := NewFrameEncoder(&buf)
	if err := encoder.WriteEvent(event); err != nil {
		t.Fatalf("WriteEvent failed: %v", err)
	}

	decoder := NewFrameDecoder(&buf)
	decoded, err := decoder.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent failed: %v", err)
	}

	if decoded.EventType != notify.EventTypeReload {
		t.Errorf("EventType = %q, want %q", decoded.EventType, notify.EventTypeReload)
	}
	if decoded.Path != event.Path {
		t.Errorf("Path = %q, want %q", decoded.Path, event.Path)
	}
	if decoded.Root != event.Root {
		t.Errorf("Root = %q, want %q", decoded.Root, event.Root)
	}
	if decoded.Seq != event.Seq {
		t.Errorf("Seq = %d, want %d", decoded.Seq, event.Seq)
	}
}

func TestFrameRoundTrip_MultipleEvents(t *testing.T) {
	var buf bytes.Buffer
	encoder := NewFrameEncoder(&buf)
	for i := int64(1); i <= 3; i++ {
		if err := encoder.WriteEvent(notify.NewReloadEvent("/assets", "a.png", i)); err != nil {
			t.Fatalf("WriteEvent %d failed: %v", i, err)
		}
	}

	decoder := NewFrameDecoder(&buf)
	for i := int64(1); i <= 3; i++ {
		decoded, err := decoder.ReadEvent()
		if err != nil {
			t.Fatalf("ReadEvent %d failed: %v", i, err)
		}
		if decoded.Seq != i {
			t.Errorf("Seq = %d, want %d", decoded.Seq, i)
		}
	}

	if _, err := decoder.ReadFrame(); err != io.EOF {
		t.Errorf("expected io.EOF after last frame, got %v", err)
	}
}

func TestReadFrame_EmptyStream(t *testing.T) {
	decoder := NewFrameDecoder(bytes.NewReader(nil))
	if _, err := decoder.ReadFrame(); err != io.EOF {
		t.Errorf("expected io.EOF for empty stream, got %v", err)
	}
}

func TestReadFrame_PartialLengthPrefix(t *testing.T) {
	decoder := NewFrameDecoder(bytes.NewReader([]byte{0x00, 0x00}))
	_, err := decoder.ReadFrame()

	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("expected *FrameError, got %v", err)
	}
	if frameErr.Kind != FrameErrorPartial {
		t.Errorf("Kind = %d, want FrameErrorPartial", frameErr.Kind)
	}
	if !frameErr.IsFatal() {
		t.Error("partial frame should be fatal")
	}
}

func TestReadFrame_TruncatedPayload(t *testing.T) {
	buf := make([]byte, LengthPrefixSize+2)
	binary.BigEndian.PutUint32(buf[:LengthPrefixSize], 100)

	decoder := NewFrameDecoder(bytes.NewReader(buf))
	_, err := decoder.ReadFrame()

	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("expected *FrameError, got %v", err)
	}
	if frameErr.Kind != FrameErrorPartial {
		t.Errorf("Kind = %d, want FrameErrorPartial", frameErr.Kind)
	}
}

func TestReadFrame_TooLarge(t *testing.T) {
	var buf [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(buf[:], MaxPayloadSize+1)

	decoder := NewFrameDecoder(bytes.NewReader(buf[:]))
	_, err := decoder.ReadFrame()

	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("expected *FrameError, got %v", err)
	}
	if frameErr.Kind != FrameErrorTooLarge {
		t.Errorf("Kind = %d, want FrameErrorTooLarge", frameErr.Kind)
	}
	if !IsFatalFrameError(err) {
		t.Error("oversized frame should be fatal")
	}
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent([]byte{0xc1}) // reserved msgpack byte

	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("expected *FrameError, got %v", err)
	}
	if frameErr.Kind != FrameErrorDecode {
		t.Errorf("Kind = %d, want FrameErrorDecode", frameErr.Kind)
	}
	if IsFatalFrameError(err) {
		t.Error("decode errors should not be fatal")
	}
}

func TestIsFatalFrameError_NonFrameError(t *testing.T) {
	if IsFatalFrameError(errors.New("plain error")) {
		t.Error("plain errors are not fatal frame errors")
	}
	if IsFatalFrameError(nil) {
		t.Error("nil is not a fatal frame error")
	}
}
