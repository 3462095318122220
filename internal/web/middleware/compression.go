package middleware

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// DefaultMinCompressSize is the smallest response Compression will gzip.
const DefaultMinCompressSize = 1024

// Compression gzips responses of at least minSize bytes for clients that
// accept it. Already compressed content types such as PNG are skipped.
func Compression(minSize int) Middleware {
	if minSize <= 0 {
		minSize = DefaultMinCompressSize
	}
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(minSize))
	if err != nil {
		panic(err)
	}
	return func(next http.Handler) http.Handler {
		return wrap(next)
	}
}
