package img

import "github.com/beetlebugorg/img/internal/parser"

// OpenOptions configures archive decoding.
type OpenOptions struct {
	// ValidateBounds controls whether every subdivision must lie within the
	// archive's global bounds. Default is true: a subdivision outside the
	// bounds fails the open with ErrMalformedSubdivisionTable. With false,
	// such subdivisions are kept and queries outside the archive bounds can
	// still return them.
	ValidateBounds bool

	// BlockSize is the read granularity against the byte source.
	// Default is 512, the smallest IMG filesystem block.
	BlockSize int

	// CacheBlocks is the number of source blocks kept in an LRU cache while
	// decoding. Zero disables the cache.
	CacheBlocks int

	// Logger receives decode and query events. Nil means NoopLogger.
	Logger *Logger
}

// DefaultOpenOptions returns default options.
func DefaultOpenOptions() OpenOptions {
	d := parser.DefaultDecodeOptions()
	return OpenOptions{
		ValidateBounds: d.ValidateBounds,
		BlockSize:      d.BlockSize,
		CacheBlocks:    d.CacheBlocks,
		Logger:         nil,
	}
}

func (o OpenOptions) decodeOptions() parser.DecodeOptions {
	return parser.DecodeOptions{
		ValidateBounds: o.ValidateBounds,
		BlockSize:      o.BlockSize,
		CacheBlocks:    o.CacheBlocks,
	}
}

func (o OpenOptions) logger() *Logger {
	if o.Logger == nil {
		return NoopLogger()
	}
	return o.Logger
}
