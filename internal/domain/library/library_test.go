package library

import (
	"bytes"
	"io"
)

// fakeFile implements File over an in-memory byte slice.
type fakeFile struct {
	name string
	size int64
	rel  string
	data []byte
}

func newFakeFile(name, rel string, size int64) *fakeFile {
	return &fakeFile{name: name, rel: rel, size: size}
}

func (f *fakeFile) Name() string    { return f.name }
func (f *fakeFile) Size() int64     { return f.size }
func (f *fakeFile) RelPath() string { return f.rel }

func (f *fakeFile) Open() (io.ReadSeekCloser, error) {
	return nopCloser{bytes.NewReader(f.data)}, nil
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }
