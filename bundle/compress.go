package bundle

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
)

// Codec selects the compression algorithm for a blob. The codec byte is the
// first byte of every compressed stream, so Decompress can dispatch without
// out-of-band information.
type Codec byte

const (
	CodecBrotli Codec = 0x01
	CodecSnappy Codec = 0x02
)

// CodecByName resolves a codec from its configuration name.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "brotli":
		return CodecBrotli, nil
	case "snappy":
		return CodecSnappy, nil
	default:
		return 0, fmt.Errorf("unknown compression codec %q", name)
	}
}

func (c Codec) String() string {
	switch c {
	case CodecBrotli:
		return "brotli"
	case CodecSnappy:
		return "snappy"
	default:
		return fmt.Sprintf("codec(0x%02x)", byte(c))
	}
}

// Compress losslessly compresses data, empty input included. Output bytes are
// not canonical across codecs or runs; only the round-trip with Decompress is
// guaranteed.
func Compress(codec Codec, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(codec))
	switch codec {
	case CodecBrotli:
		w := brotli.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("brotli compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("brotli compress: %w", err)
		}
	case CodecSnappy:
		buf.Write(snappy.Encode(nil, data))
	default:
		return nil, fmt.Errorf("unknown compression codec %q", codec)
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress. Unknown tags and corrupt streams yield an
// error wrapping ErrCompression; the input may come from untrusted calldata.
func Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrCompression)
	}
	codec, stream := Codec(data[0]), data[1:]
	switch codec {
	case CodecBrotli:
		out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(stream)))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompression, err)
		}
		return out, nil
	case CodecSnappy:
		out, err := snappy.Decode(nil, stream)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompression, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown codec 0x%02x", ErrCompression, byte(codec))
	}
}
