package stream

import (
	"io"

	"github.com/dagucloud/txtwriter/internal/core"
	"github.com/mholt/archives"
)

// compressor is the writing half of an archives compression format.
type compressor interface {
	OpenWriter(w io.Writer) (io.WriteCloser, error)
}

// decompressor is the reading half of an archives compression format.
type decompressor interface {
	OpenReader(r io.Reader) (io.ReadCloser, error)
}

type codec interface {
	compressor
	decompressor
}

var codecs = map[core.Compression]codec{
	core.CompressionGzip:  archives.Gz{},
	core.CompressionBzip2: archives.Bz2{},
}

// ParseCodec resolves a configured compress value. A blank value means the
// output is written uncompressed.
func ParseCodec(name string) (core.Compression, error) {
	c, err := core.ParseCompression(name)
	if err != nil {
		return "", err
	}
	if c == core.CompressionNone {
		return c, nil
	}
	if _, ok := codecs[c]; !ok {
		return "", core.NewError(core.ErrIllegalValue, "compress %q has no codec", name)
	}
	return c, nil
}

// NewReader opens r for reading data written with the given compression.
// The returned reader must be closed by the caller.
func NewReader(r io.Reader, c core.Compression) (io.ReadCloser, error) {
	if c == core.CompressionNone {
		return io.NopCloser(r), nil
	}
	cd, ok := codecs[c]
	if !ok {
		return nil, core.NewError(core.ErrIllegalValue, "compress %q has no codec", c)
	}
	return cd.OpenReader(r)
}
