package camera

import "bufio"

// JPEG stream markers.
const (
	jpegMarker = 0xFF
	jpegSOI    = 0xD8
	jpegEOI    = 0xD9
)

// readJPEG extracts the next complete JPEG from a byte stream: skip
// to the next SOI marker, then accumulate through the matching EOI.
// This is how frames come off the nvjpegenc fdsink pipe - raw JPEGs
// back to back with no framing of their own.
func readJPEG(br *bufio.Reader) ([]byte, error) {
	// Seek the start-of-image marker.
	for {
		b, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		if b != jpegMarker {
			continue
		}
		next, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		if next == jpegSOI {
			break
		}
	}

	data := []byte{jpegMarker, jpegSOI}
	for {
		b, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		data = append(data, b)
		if b == jpegEOI && len(data) >= 4 && data[len(data)-2] == jpegMarker {
			return data, nil
		}
	}
}
