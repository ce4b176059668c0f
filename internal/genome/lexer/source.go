package lexer

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadSource decodes genome text from r. The default encoding is UTF-8 with
// BOM sniffing, so UTF-16 files saved by desktop editors also load.
func ReadSource(r io.Reader, encoding string) (string, error) {
	var decoder transform.Transformer
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		decoder = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	case "latin1", "iso-8859-1":
		decoder = charmap.ISO8859_1.NewDecoder()
	case "cp437":
		decoder = charmap.CodePage437.NewDecoder()
	default:
		return "", fmt.Errorf("unsupported source encoding %q", encoding)
	}

	data, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return "", fmt.Errorf("failed to decode genome source: %w", err)
	}
	return string(data), nil
}
