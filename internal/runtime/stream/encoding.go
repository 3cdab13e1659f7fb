package stream

import (
	"strings"

	"github.com/dagucloud/txtwriter/internal/core"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// LookupEncoding resolves a charset name such as "UTF-8", "GBK" or
// "ISO-8859-1". IANA names are tried first, then WHATWG labels.
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, core.NewError(core.ErrCharset, "encoding must not be blank")
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(name); err == nil && enc != nil {
		return enc, nil
	}
	return nil, core.NewError(core.ErrCharset, "unsupported encoding %q", name)
}

func isUTF8(enc encoding.Encoding) bool {
	return enc == unicode.UTF8
}
