package loader

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/born-ml/superres/internal/logging"
	"github.com/born-ml/superres/internal/nn"
	"github.com/klauspost/compress/zstd"
)

// ErrUnknownFormat is returned when a stream is neither JSON nor zstd.
var ErrUnknownFormat = errors.New("unknown model format")

var zstdDecPool = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil)
		return dec
	},
}

var zstdEncPool = sync.Pool{
	New: func() any {
		enc, _ := zstd.NewWriter(nil)
		return enc
	},
}

type options struct {
	activation nn.Activation
	format     ModelFormat
}

// Option configures Load, Decode, Save and Encode.
type Option func(*options)

// WithActivation sets the activation assigned to every layer.
// The default is nn.DefaultActivation.
func WithActivation(act nn.Activation) Option {
	return func(o *options) { o.activation = act }
}

// WithFormat sets the container Encode writes. Decoding always detects it.
func WithFormat(f ModelFormat) Option {
	return func(o *options) { o.format = f }
}

func buildOptions(opts []Option) options {
	o := options{activation: nn.DefaultActivation(), format: FormatJSON}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Load reads a model file from disk.
func Load(path string, opts ...Option) (*nn.Model, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is the model the caller asked for
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer func() { _ = f.Close() }()

	m, err := Decode(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logging.Logger().Info("model loaded", "path", path, "layers", m.Len(), "parameters", m.NumParameters())
	return m, nil
}

// Decode reads a JSON array of layer descriptions, optionally zstd-compressed,
// and builds a Model from it.
func Decode(r io.Reader, opts ...Option) (*nn.Model, error) {
	o := buildOptions(opts)

	br := bufio.NewReader(r)
	header, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	format := DetectFormat(header)
	if format == FormatUnknown {
		// Leading whitespace can be longer than the peeked header.
		if err := skipSpace(br); err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		if next, _ := br.Peek(1); len(next) > 0 {
			header = next
			format = DetectFormat(next)
		}
	}

	var src io.Reader = br
	switch format {
	case FormatZstd:
		dec := zstdDecPool.Get().(*zstd.Decoder)
		defer zstdDecPool.Put(dec)
		if err := dec.Reset(br); err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		src = dec
	case FormatJSON:
	default:
		return nil, fmt.Errorf("%w: header % x", ErrUnknownFormat, header)
	}

	var descs []nn.LayerDesc
	if err := json.NewDecoder(src).Decode(&descs); err != nil {
		return nil, fmt.Errorf("failed to decode %s model: %w", format, err)
	}
	return nn.BuildModel(descs, o.activation)
}

// skipSpace consumes JSON whitespace from br.
func skipSpace(br *bufio.Reader) error {
	for {
		c, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return br.UnreadByte()
	}
}

// Save writes m to path, compressing when the extension is .zst or .zstd.
func Save(path string, m *nn.Model, opts ...Option) (err error) {
	f, err := os.Create(path) //nolint:gosec // G304: path is the destination the caller asked for
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	opts = append([]Option{WithFormat(FormatForPath(path))}, opts...)
	return Encode(f, m, opts...)
}

// Encode writes m as a JSON array of layer descriptions.
func Encode(w io.Writer, m *nn.Model, opts ...Option) error {
	o := buildOptions(opts)
	descs := nn.DescribeModel(m)

	switch o.format {
	case FormatJSON:
		return json.NewEncoder(w).Encode(descs)
	case FormatZstd:
		enc := zstdEncPool.Get().(*zstd.Encoder)
		defer zstdEncPool.Put(enc)
		enc.Reset(w)
		if err := json.NewEncoder(enc).Encode(descs); err != nil {
			_ = enc.Close()
			return fmt.Errorf("zstd encode: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("zstd encode: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, o.format)
	}
}
