package capture

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

var zstdEncoder *zstd.Encoder
var zstdDecoder *zstd.Decoder

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil)
	if err != nil {
		panic(fmt.Sprintf("capture: zstd encoder init: %v", err))
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Sprintf("capture: zstd decoder init: %v", err))
	}
}

// CompressRaw compresses raw captured message bytes for storage in a
// fixture or golden file.
func CompressRaw(raw []byte) []byte {
	return zstdEncoder.EncodeAll(raw, nil)
}

// DecompressRaw reverses CompressRaw.
func DecompressRaw(compressed []byte) ([]byte, error) {
	raw, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("capture: zstd decode: %w", err)
	}
	return raw, nil
}
