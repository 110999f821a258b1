package keautil

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"time"

	"github.com/pkg/errors"
)

// Helper object creating the gzip-compressed tarball from the binary
// contents. The owner is responsible for calling the Close method.
type TarballWriter struct {
	gzipWriter *gzip.Writer
	tarWriter  *tar.Writer
}

// Constructs a tarball writer passing the compressed bytes to the target.
func NewTarballWriter(target io.Writer) *TarballWriter {
	if target == nil {
		return nil
	}
	gzipWriter := gzip.NewWriter(target)
	return &TarballWriter{
		gzipWriter: gzipWriter,
		tarWriter:  tar.NewWriter(gzipWriter),
	}
}

// Adds a binary content to the tarball. The path is a location inside the
// tarball.
func (t *TarballWriter) AddContent(path string, content []byte, modTime time.Time) error {
	header := &tar.Header{
		Name:     path,
		Size:     int64(len(content)),
		ModTime:  modTime,
		Mode:     0o644,
		Typeflag: tar.TypeReg,
	}
	if err := t.tarWriter.WriteHeader(header); err != nil {
		return errors.Wrapf(err, "could not write the TAR header of %s", path)
	}
	_, err := io.Copy(t.tarWriter, bytes.NewReader(content))
	return errors.Wrapf(err, "could not add %s to the TAR archive", path)
}

// Flushes and closes the internal writers.
func (t *TarballWriter) Close() error {
	if err := t.tarWriter.Close(); err != nil {
		t.gzipWriter.Close()
		return errors.Wrap(err, "could not close the TAR archive")
	}
	return errors.Wrap(t.gzipWriter.Close(), "could not close the gzip stream")
}

// Callback receiving the TAR header of an entry and the function reading
// its content. It returns false to stop the walking.
type WalkCallback = func(header *tar.Header, read func() ([]byte, error)) bool

// Unpacks the tarball and calls the callback for each entry one-by-one.
// Only the regular files can be read.
func WalkFilesInTarball(tarball io.Reader, callback WalkCallback) error {
	gzipReader, err := gzip.NewReader(tarball)
	if err != nil {
		return errors.Wrap(err, "invalid tarball")
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "problem reading next header")
		}

		read := func() ([]byte, error) {
			if header.Typeflag != tar.TypeReg {
				return nil, errors.Errorf("cannot read the non-regular entry %s", header.Name)
			}
			data, err := io.ReadAll(tarReader)
			return data, errors.Wrapf(err, "cannot read the content of the tarball file %s", header.Name)
		}
		if !callback(header, read) {
			return nil
		}
	}
}

// Lists the regular files inside the tarball.
func ListFilesInTarball(tarball io.Reader) ([]string, error) {
	result := make([]string, 0)
	err := WalkFilesInTarball(tarball, func(header *tar.Header, _ func() ([]byte, error)) bool {
		if header.Typeflag == tar.TypeReg {
			result = append(result, header.Name)
		}
		return true
	})
	return result, err
}

// Searches for the file in the tarball and returns its content. It returns
// nil content and no error if the file is not in the tarball.
func SearchFileInTarball(tarball io.Reader, filename string) ([]byte, error) {
	var result []byte
	var readErr error
	err := WalkFilesInTarball(tarball, func(header *tar.Header, read func() ([]byte, error)) bool {
		if header.Typeflag != tar.TypeReg || header.Name != filename {
			return true
		}
		result, readErr = read()
		return false
	})
	if err != nil {
		return nil, err
	}
	return result, readErr
}
