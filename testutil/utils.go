package testutil

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Reads the pipe in the background so the writer never blocks on a full
// pipe buffer.
type pipeCapture struct {
	reader *os.File
	writer *os.File
	buffer bytes.Buffer
	err    error
	wg     sync.WaitGroup
}

func newPipeCapture() (*pipeCapture, error) {
	reader, writer, err := os.Pipe()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create the pipe")
	}
	capture := &pipeCapture{reader: reader, writer: writer}
	capture.wg.Add(1)
	go func() {
		defer capture.wg.Done()
		_, capture.err = io.Copy(&capture.buffer, reader)
	}()
	return capture, nil
}

// Closes the write end and returns everything written to the pipe.
func (c *pipeCapture) finish() ([]byte, error) {
	c.writer.Close()
	c.wg.Wait()
	c.reader.Close()
	return c.buffer.Bytes(), c.err
}

// Runs the function and returns what it printed to the standard output
// and the standard error. The logrus output goes to the standard output.
func CaptureOutput(f func()) (stdout []byte, stderr []byte, err error) {
	outCapture, err := newPipeCapture()
	if err != nil {
		return nil, nil, err
	}
	errCapture, err := newPipeCapture()
	if err != nil {
		outCapture.finish()
		return nil, nil, err
	}

	originalStdout, originalStderr := os.Stdout, os.Stderr
	originalLogOutput := logrus.StandardLogger().Out
	os.Stdout, os.Stderr = outCapture.writer, errCapture.writer
	logrus.SetOutput(outCapture.writer)
	func() {
		defer func() {
			os.Stdout, os.Stderr = originalStdout, originalStderr
			logrus.SetOutput(originalLogOutput)
		}()
		f()
	}()

	stdout, err = outCapture.finish()
	if err != nil {
		errCapture.finish()
		return nil, nil, errors.Wrap(err, "cannot read stdout")
	}
	stderr, err = errCapture.finish()
	return stdout, stderr, errors.Wrap(err, "cannot read stderr")
}

// Remembers the environment variables and returns a function restoring
// them. The variables set in the meantime are removed.
func CreateEnvironmentRestorePoint() func() {
	snapshot := os.Environ()
	return func() {
		os.Clearenv()
		for _, entry := range snapshot {
			if key, value, ok := strings.Cut(entry, "="); ok {
				os.Setenv(key, value)
			}
		}
	}
}

// Remembers the command line arguments and returns a function restoring
// them.
func CreateOsArgsRestorePoint() func() {
	snapshot := append([]string{}, os.Args...)
	return func() {
		os.Args = snapshot
	}
}
