package index

import (
	"os"

	"github.com/google/renameio"
	"gopkg.in/yaml.v3"

	"github.com/dmagyar-0/mf4-go/compress"
	"github.com/dmagyar-0/mf4-go/internal/options"
)

// FileOption configures catalog save and load.
type FileOption = options.Option[*fileConfig]

type fileConfig struct {
	codec compress.Codec
}

// WithCompression compresses the serialized catalog with the given codec
// on save and expects the same codec on load.
func WithCompression(codec compress.Codec) FileOption {
	return options.NoError(func(c *fileConfig) {
		c.codec = codec
	})
}

// Marshal serializes the catalog as a key/value text document. Field
// names are stable across library versions.
func (idx *Index) Marshal() ([]byte, error) {
	return yaml.Marshal(idx)
}

// Unmarshal parses a catalog document. Unknown fields are tolerated so
// newer catalogs load with older libraries.
func Unmarshal(data []byte) (*Index, error) {
	idx := &Index{}
	if err := yaml.Unmarshal(data, idx); err != nil {
		return nil, err
	}

	return idx, nil
}

// SaveFile atomically writes the catalog to path: the document is staged
// in a temporary file and renamed into place, so readers never observe a
// partial catalog.
func (idx *Index) SaveFile(path string, opts ...FileOption) error {
	cfg := &fileConfig{codec: compress.NewNoOpCodec()}
	if err := options.Apply(cfg, opts...); err != nil {
		return err
	}

	data, err := idx.Marshal()
	if err != nil {
		return err
	}
	data, err = cfg.codec.Compress(data)
	if err != nil {
		return err
	}

	return renameio.WriteFile(path, data, 0o644)
}

// LoadFile reads a catalog saved with SaveFile, using the same options.
func LoadFile(path string, opts ...FileOption) (*Index, error) {
	cfg := &fileConfig{codec: compress.NewNoOpCodec()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err = cfg.codec.Decompress(data)
	if err != nil {
		return nil, err
	}

	return Unmarshal(data)
}
