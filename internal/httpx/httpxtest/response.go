package httpxtest

import (
	"bytes"
	"io"
)

func Body(b string) io.ReadCloser {
	return io.NopCloser(bytes.NewReader([]byte(b)))
}
