package keactrl

import (
	"isc.org/keaconverge/datamodel/daemonname"
)

const (
	ConfigGet    CommandName = "config-get"
	ConfigReload CommandName = "config-reload"
	ConfigTest   CommandName = "config-test"
	ListCommands CommandName = "list-commands"
	StatusGet    CommandName = "status-get"
	VersionGet   CommandName = "version-get"
	HAHeartbeat  CommandName = "ha-heartbeat"
)

// Creates config-test command. The configuration is the complete document
// including the root key (e.g., Dhcp4).
func NewCommandConfigTest(config map[string]any, daemonName daemonname.Name) *Command {
	return NewCommandBase(ConfigTest, daemonName).WithArguments(config)
}
