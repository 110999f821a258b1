package keaconfig

// Represents a shared network in the Kea configuration. The shared networks
// are supplied with the Kea parameter names, so the content is kept as
// a generic tree.
type SharedNetwork map[string]any

// Returns the shared network name or an empty string if the name is not
// a string.
func (sn SharedNetwork) GetName() string {
	name, _ := sn["name"].(string)
	return name
}
