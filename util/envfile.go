package keautil

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Defines an interfaces that accepts the environment variables.
type EnvironmentVariableSetter interface {
	Set(key, value string) error
}

// Sets the variables in the environment of the current process. The
// variables already present in the environment are not overridden, so
// the explicitly exported ones take precedence over the file.
type ProcessEnvironmentSetter struct{}

// Sets the environment variable unless it is already set.
func (ProcessEnvironmentSetter) Set(key, value string) error {
	if _, ok := os.LookupEnv(key); ok {
		return nil
	}
	return errors.WithStack(os.Setenv(key, value))
}

// Single entry of the environment file.
type environmentEntry struct {
	key   string
	value string
}

// Loads all entries from the environment file into the setter object.
func LoadEnvironmentFileToSetter(path string, setter EnvironmentVariableSetter) error {
	entries, err := loadEnvironmentFile(path)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		err = setter.Set(entry.key, entry.value)
		if err != nil {
			err = errors.WithMessagef(err, "cannot set value for key: '%s'", entry.key)
			return err
		}
	}

	return nil
}

// Loads all entries from the environment file.
func loadEnvironmentFile(path string) ([]environmentEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open the '%s' environment file", path)
	}
	defer file.Close()
	return loadEnvironmentEntries(file)
}

// Loads all entries from a given reader.
func loadEnvironmentEntries(reader io.Reader) ([]environmentEntry, error) {
	var entries []environmentEntry
	scanner := bufio.NewScanner(reader)

	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		key, value, err := loadEnvironmentLine(scanner.Text())
		if err != nil {
			return nil, errors.WithMessagef(err, "invalid line %d of environment file", lineIdx)
		}
		if key == "" {
			// Comment or blank line.
			continue
		}
		entries = append(entries, environmentEntry{key, value})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot read the environment file")
	}

	return entries, nil
}

// Parses a line of the environment file. The value may be enclosed in
// single or double quotes.
func loadEnvironmentLine(line string) (string, string, error) {
	line = strings.TrimSpace(line)

	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", nil
	}

	line = strings.TrimPrefix(line, "export ")

	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", errors.Errorf("line must contain the key and value separated by the '=' sign")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", errors.Errorf("key cannot be empty")
	}

	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' || first == '\'') && first == last {
			value = value[1 : len(value)-1]
		}
	}

	return key, value, nil
}
