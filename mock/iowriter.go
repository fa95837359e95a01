// Package mock contains trivial test doubles shared by the package tests.
package mock

// IOWriter is an io.Writer which accumulates everything written to it so tests
// can inspect the output afterwards.
type IOWriter struct {
	buf []byte
}

func (t *IOWriter) Reset() {
	t.buf = t.buf[:0]
}

func (t *IOWriter) Write(b []byte) (int, error) {
	t.buf = append(t.buf, b...)

	return len(b), nil
}

func (t *IOWriter) String() string {
	return string(t.buf)
}

func (t *IOWriter) Len() int {
	return len(t.buf)
}
