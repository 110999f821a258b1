package manifest

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"muzzammil.xyz/jsonc"
)

// Indicates if the content is a JSON document (possibly with comments)
// rather than YAML. The file extension decides when it is known.
func isJSON(path string, content []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return true
	case ".yaml", ".yml":
		return false
	}
	return bytes.HasPrefix(bytes.TrimSpace(content), []byte("{"))
}

// Decodes the content into the target. The JSON documents are stripped of
// the comments and decoded with the YAML decoder, which accepts JSON. The
// unknown keys are rejected to catch the typos in the parameter names.
func decode(content []byte, asJSON bool, target any) error {
	if asJSON {
		content = jsonc.ToJSON(content)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	err := decoder.Decode(target)
	if errors.Is(err, io.EOF) {
		// Empty document.
		return nil
	}
	return err
}

// Parses the manifest from YAML or JSON with comments and sets the
// default directories.
func Parse(content []byte, asJSON bool) (*Manifest, error) {
	m := &Manifest{}
	if err := decode(content, asJSON, m); err != nil {
		return nil, errors.Wrap(err, "cannot parse the manifest")
	}
	m.SetDefaults()
	return m, nil
}

// Reads and parses the manifest file.
func Load(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read the manifest file %s", path)
	}
	m, err := Parse(content, isJSON(path, content))
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid manifest file %s", path)
	}
	log.WithField("path", path).Debug("Loaded the manifest")
	return m, nil
}
