package testutil

import (
	"os"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"
)

// Sandbox is a temporary directory tree used by the tests that write the
// configuration files. It is the stand-in for the /etc/kea directory and
// the Kea hooks directory. Each sandbox has its own unique directory so two
// sandboxes never interfere.
type Sandbox struct {
	BasePath string
}

// Create a new sandbox. The sandbox is located in a temporary
// directory.
func NewSandbox() *Sandbox {
	dir, err := os.MkdirTemp("", "keaconverge_ut_*")
	if err != nil {
		log.Fatal(err)
	}
	return &Sandbox{
		BasePath: dir,
	}
}

// Close sandbox and remove all its contents.
func (sb *Sandbox) Close() {
	os.RemoveAll(sb.BasePath)
}

// Returns an absolute path to the entry in the sandbox. It doesn't create
// anything.
func (sb *Sandbox) Path(name string) string {
	return filepath.Join(sb.BasePath, name)
}

// Create parent directory in sandbox (and all missing directories
// above it if needed, similar to -p option in mkdir), create
// indicated file in this parent directory, and return a full path to
// this file.
func (sb *Sandbox) Join(name string) (string, error) {
	filePath := sb.Path(name)

	err := os.MkdirAll(filepath.Dir(filePath), 0o777)
	if err != nil {
		return "", err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	return filePath, nil
}

// Create indicated directory in sandbox and all parent directories
// and return a full path.
func (sb *Sandbox) JoinDir(name string) (string, error) {
	filePath := sb.Path(name)

	err := os.MkdirAll(filePath, 0o777)
	if err != nil {
		return "", err
	}

	return filePath, nil
}

// Create a file and write provided content to it.
func (sb *Sandbox) Write(name string, content string) (string, error) {
	filePath, err := sb.Join(name)
	if err != nil {
		return "", err
	}

	err = os.WriteFile(filePath, []byte(content), 0o600)
	if err != nil {
		return "", err
	}

	return filePath, nil
}

// Reads the content of the file from the sandbox.
func (sb *Sandbox) Read(name string) (string, error) {
	content, err := os.ReadFile(sb.Path(name))
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// Checks if the entry exists in the sandbox.
func (sb *Sandbox) Exists(name string) bool {
	_, err := os.Stat(sb.Path(name))
	return err == nil
}

// Returns the sorted names of the entries in the sandbox directory. It
// returns nil if the directory doesn't exist.
func (sb *Sandbox) List(name string) []string {
	entries, err := os.ReadDir(sb.Path(name))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}
