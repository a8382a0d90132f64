package checkpointer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is the algorithm used to compress checkpoints
type Compression uint8

const (
	// None stores checkpoints uncompressed
	None Compression = iota

	// LZ4 compresses checkpoints quickly
	LZ4

	// ZSTD compresses checkpoints with a better ratio than LZ4
	ZSTD
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	}
	return fmt.Sprintf("Compression(%d)", uint8(c))
}

// ParseCompression returns the Compression with the given name, one
// of none, lz4, or zstd
func ParseCompression(name string) (Compression, error) {
	for _, c := range []Compression{None, LZ4, ZSTD} {
		if c.String() == name {
			return c, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
}

func (c Compression) valid() bool {
	return c <= ZSTD
}

var (
	// ErrUnknownCompression denotes an unsupported compression
	ErrUnknownCompression = errors.New("unknown compression")

	// ErrCorrupt denotes a checkpoint that cannot be decompressed
	ErrCorrupt = errors.New("corrupt checkpoint")
)

// Checkpoints are stored as
//
//	[compression uint8][uncompressed size uint64][payload]
//
// Empty data, and data that LZ4 cannot compress, is stored with
// compression None.
const headerSize = 9

const (
	// maxSize is the largest uncompressed checkpoint that will be restored
	maxSize = 1 << 34

	// lz4MaxRatio bounds the uncompressed size of an LZ4 block relative
	// to its compressed size
	lz4MaxRatio = 255
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxSize))
}

// compress returns data compressed with c, prefixed with a header
func compress(data []byte, c Compression) ([]byte, error) {
	if len(data) == 0 && c.valid() {
		c = None
	}

	var payload []byte
	switch c {
	case None:
		payload = data

	case LZ4:
		compressed := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, compressed, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// Incompressible
			c, payload = None, data
		} else {
			payload = compressed[:n]
		}

	case ZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, err
		}
		payload = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownCompression, c)
	}

	out := make([]byte, headerSize+len(payload))
	out[0] = byte(c)
	binary.LittleEndian.PutUint64(out[1:headerSize], uint64(len(data)))
	copy(out[headerSize:], payload)
	return out, nil
}

// decompress returns the data held in a compressed checkpoint
func decompress(data []byte) ([]byte, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: checkpoint too small for header",
			ErrCorrupt)
	}

	c := Compression(data[0])
	size := binary.LittleEndian.Uint64(data[1:headerSize])
	payload := data[headerSize:]
	if size > maxSize {
		return nil, fmt.Errorf("%w: size %v exceeds limit %v", ErrCorrupt,
			size, uint64(maxSize))
	}

	switch c {
	case None:
		if uint64(len(payload)) != size {
			return nil, fmt.Errorf("%w: size mismatch", ErrCorrupt)
		}
		return payload, nil

	case LZ4:
		if size > uint64(len(payload))*lz4MaxRatio {
			return nil, fmt.Errorf("%w: size %v too large for %v byte block",
				ErrCorrupt, size, len(payload))
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint64(n) != size {
			return nil, fmt.Errorf("%w: size mismatch", ErrCorrupt)
		}
		return out, nil

	case ZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint64(len(out)) != size {
			return nil, fmt.Errorf("%w: size mismatch", ErrCorrupt)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownCompression, c)
}
