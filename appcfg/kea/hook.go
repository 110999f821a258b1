package keaconfig

import (
	"encoding/json"
	"path"
	"strings"
)

// Hook libraries loaded by the Kea daemon in order.
type HookLibraries []HookLibrary

// Hook library with the library-specific parameters.
type HookLibrary struct {
	Library    string          `json:"library"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

// Checks if the library file name starts with the given name, e.g.,
// libdhcp_ha matches /usr/lib/kea/hooks/libdhcp_ha.so.
func (l HookLibrary) Is(name string) bool {
	return strings.HasPrefix(path.Base(l.Library), name)
}

// Returns the index of the first library with the given name or -1.
func (hl HookLibraries) IndexOf(name string) int {
	for i, library := range hl {
		if library.Is(name) {
			return i
		}
	}
	return -1
}
