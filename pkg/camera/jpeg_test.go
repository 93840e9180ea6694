package camera

import (
	"bufio"
	"bytes"
	"io"
	"testing"
)

// fakeJPEG builds a minimal SOI...EOI byte run with the given body.
func fakeJPEG(body []byte) []byte {
	out := []byte{0xFF, 0xD8}
	out = append(out, body...)
	return append(out, 0xFF, 0xD9)
}

func TestReadJPEG_SplitsConsecutiveFrames(t *testing.T) {
	a := fakeJPEG([]byte{1, 2, 3})
	b := fakeJPEG([]byte{9, 8, 7, 6})

	br := bufio.NewReader(bytes.NewReader(append(append([]byte{}, a...), b...)))

	got, err := readJPEG(br)
	if err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if !bytes.Equal(got, a) {
		t.Errorf("first frame: got % x, want % x", got, a)
	}

	got, err = readJPEG(br)
	if err != nil {
		t.Fatalf("second frame: %v", err)
	}
	if !bytes.Equal(got, b) {
		t.Errorf("second frame: got % x, want % x", got, b)
	}
}

func TestReadJPEG_SkipsLeadingGarbage(t *testing.T) {
	frame := fakeJPEG([]byte{5, 5})
	stream := append([]byte{0x00, 0xFF, 0x01, 0x42}, frame...)

	got, err := readJPEG(bufio.NewReader(bytes.NewReader(stream)))
	if err != nil {
		t.Fatalf("readJPEG: %v", err)
	}
	if !bytes.Equal(got, frame) {
		t.Errorf("got % x, want % x", got, frame)
	}
}

func TestReadJPEG_EOFMidFrame(t *testing.T) {
	truncated := []byte{0xFF, 0xD8, 1, 2, 3} // no EOI

	if _, err := readJPEG(bufio.NewReader(bytes.NewReader(truncated))); err != io.EOF {
		t.Errorf("got %v, want io.EOF", err)
	}
}
