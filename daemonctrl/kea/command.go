package keactrl

import (
	"encoding/json"
	"reflect"

	"github.com/pkg/errors"
	"isc.org/keaconverge/datamodel/daemonname"
)

// Name of the Kea control command, e.g., status-get.
type CommandName string

// Command accepted by the control clients.
type SerializableCommand interface {
	GetCommand() CommandName
	GetDaemonsList() []daemonname.Name
	Marshal() ([]byte, error)
}

// Kea control command. The service list names the daemons the Kea Control
// Agent forwards the command to. The daemons reached directly over their
// own control sockets don't expect it.
type Command struct {
	Command   CommandName       `json:"command"`
	Daemons   []daemonname.Name `json:"service,omitempty"`
	Arguments any               `json:"arguments,omitempty"`
}

var _ SerializableCommand = (*Command)(nil)

// Checks if the value serializes to a JSON object.
func isObject(arguments any) bool {
	if _, ok := arguments.(json.RawMessage); ok {
		return true
	}
	kind := reflect.TypeOf(arguments).Kind()
	if kind == reflect.Ptr {
		return reflect.TypeOf(arguments).Elem().Kind() == reflect.Struct
	}
	return kind == reflect.Map || kind == reflect.Struct
}

// Creates the command. It returns nil if the name is empty or the
// arguments are not a map or a struct.
func newCommand(name CommandName, daemon daemonname.Name, arguments any) *Command {
	if name == "" || (arguments != nil && !isObject(arguments)) {
		return nil
	}
	command := &Command{
		Command:   name,
		Arguments: arguments,
	}
	if daemon != "" {
		command.Daemons = []daemonname.Name{daemon}
	}
	return command
}

// Creates the command without arguments. The empty daemon name produces
// the command without the service list.
func NewCommandBase(name CommandName, daemon daemonname.Name) *Command {
	return newCommand(name, daemon, nil)
}

func (c Command) GetCommand() CommandName {
	return c.Command
}

func (c Command) GetDaemonsList() []daemonname.Name {
	return c.Daemons
}

// Serializes the command to JSON.
func (c Command) Marshal() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal Kea command: %s", c.Command)
	}
	return data, nil
}

// Returns a copy of the command with the argument set. It panics if the
// command already has the arguments that are not a map.
func (c Command) WithArgument(name string, value any) *Command {
	arguments := map[string]any{}
	if c.Arguments != nil {
		current, ok := c.Arguments.(map[string]any)
		if !ok {
			panic("command arguments are not a map")
		}
		for key, existing := range current {
			arguments[key] = existing
		}
	}
	arguments[name] = value
	c.Arguments = arguments
	return &c
}

// Returns a copy of the command with the arguments replaced.
func (c Command) WithArguments(arguments any) *Command {
	c.Arguments = arguments
	return &c
}
