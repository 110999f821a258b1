package keaconfig

import (
	"bytes"
	"encoding/json"
	"regexp"

	"github.com/pkg/errors"
	keautil "isc.org/keaconverge/util"
)

// Names of the top-level configuration nodes.
const (
	RootNameDHCPv4 string = "Dhcp4"
	RootNameDHCPv6 string = "Dhcp6"
	RootNameD2     string = "DhcpDdns"
)

// The include placeholder is a JSON string starting with the NUL character.
// The NUL character is escaped by the encoder, so the placeholder can be
// found in the serialized text and replaced with the include directive.
const includeMarker = "\x00include:"

var includePlaceholderRegexp = regexp.MustCompile(`"\\u0000include:([^"\\]*)"`)

// A reference to another configuration file. It is serialized as the Kea
// include directive in place of the JSON value. The path must not contain
// quotes or backslashes.
type Include string

// Serializes the include placeholder.
func (i Include) MarshalJSON() ([]byte, error) {
	return json.Marshal(includeMarker + string(i))
}

// Top-level Kea configuration file. Exactly one of the daemon
// configurations is set.
type Document struct {
	DHCPv4 *DHCPv4Config `json:"Dhcp4,omitempty"`
	DHCPv6 *DHCPv6Config `json:"Dhcp6,omitempty"`
	D2     *D2Config     `json:"DhcpDdns,omitempty"`
}

// Serializes the configuration into indented JSON terminated with a new
// line. The Include values are replaced with the include directives. The
// output is deterministic. The struct fields keep their declaration order
// and the map keys are sorted.
func Marshal(v any) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return nil, errors.Wrap(err, "cannot serialize the Kea configuration")
	}
	return includePlaceholderRegexp.ReplaceAll(buffer.Bytes(), []byte(`<?include "${1}"?>`)), nil
}

// Serializes a JSON list of the included files, e.g., the list of subnets.
// Each include directive occupies a separate line. An empty list is
// serialized as the opening and closing brackets in separate lines.
func MarshalIncludeList(paths []string) []byte {
	var buffer bytes.Buffer
	buffer.WriteString("[\n")
	for i, path := range paths {
		buffer.WriteString(keautil.IncludeDirective(path))
		if i < len(paths)-1 {
			buffer.WriteByte(',')
		}
		buffer.WriteByte('\n')
	}
	buffer.WriteString("]\n")
	return buffer.Bytes()
}
