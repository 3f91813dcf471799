// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sessionstore

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how a snapshot payload is compressed. The
// values are stored in snapshot files; changing them breaks existing
// snapshots.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionLZ4  Compression = 1
	CompressionZstd Compression = 2
)

// String returns the config spelling of the compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses none, lz4, or zstd.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression: %q", name)
	}
}

// maxDecompressedSize bounds the declared size of a snapshot payload.
// The size comes from the file, so it is checked before any buffer is
// allocated.
const maxDecompressedSize = 256 << 20

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("sessionstore: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("sessionstore: zstd decoder initialization failed: " + err.Error())
	}
}

// compress returns the compressed payload and the compression actually
// used. Data lz4 cannot shrink is stored uncompressed.
func compress(data []byte, compression Compression) ([]byte, Compression, error) {
	switch compression {
	case CompressionNone:
		return data, CompressionNone, nil

	case CompressionLZ4:
		destination := make([]byte, lz4.CompressBlockBound(len(data)))
		written, err := lz4.CompressBlock(data, destination, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("lz4 compress: %w", err)
		}
		if written == 0 || written >= len(data) {
			return data, CompressionNone, nil
		}
		return destination[:written], CompressionLZ4, nil

	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), CompressionZstd, nil

	default:
		return nil, 0, fmt.Errorf("unsupported compression: %s", compression)
	}
}

func decompress(payload []byte, compression Compression, size int) ([]byte, error) {
	if size < 0 || size > maxDecompressedSize {
		return nil, fmt.Errorf("declared size %d outside [0, %d]", size, maxDecompressedSize)
	}
	var result []byte
	switch compression {
	case CompressionNone:
		result = payload

	case CompressionLZ4:
		result = make([]byte, size)
		read, err := lz4.UncompressBlock(payload, result)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		result = result[:read]

	case CompressionZstd:
		var err error
		result, err = zstdDecoder.DecodeAll(payload, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported compression: %s", compression)
	}

	if len(result) != size {
		return nil, fmt.Errorf("%s decompress: got %d bytes, expected %d", compression, len(result), size)
	}
	return result, nil
}
