package compiler

import (
	"fmt"

	"github.com/pkg/errors"
	"isc.org/keaconverge/datamodel/daemonname"
)

// Kind of the configuration error.
type ErrorKind string

const (
	// The resolved HA this_server is not one of the peers.
	UnknownServer ErrorKind = "UnknownServer"
	// The role of this server is not permitted for the HA mode.
	InvalidRoleForMode ErrorKind = "InvalidRoleForMode"
	// Two subnets resolve to the same file name.
	DuplicateSubnetFilename ErrorKind = "DuplicateSubnetFilename"
	// Two shared networks resolve to the same file name.
	DuplicateSharedNetworkFilename ErrorKind = "DuplicateSharedNetworkFilename"
	InvalidMode                    ErrorKind = "InvalidMode"
	InvalidPeerURL                 ErrorKind = "InvalidPeerURL"
	InvalidSubnet                  ErrorKind = "InvalidSubnet"
	PoolOutsideSubnet              ErrorKind = "PoolOutsideSubnet"
	UnknownDDNSKey                 ErrorKind = "UnknownDDNSKey"
	InvalidDomainName              ErrorKind = "InvalidDomainName"
	InvalidTSIGKey                 ErrorKind = "InvalidTSIGKey"
	// A reservation without a host identifier or with several of them.
	InvalidReservation   ErrorKind = "InvalidReservation"
	InvalidLeaseDatabase ErrorKind = "InvalidLeaseDatabase"
	// The HA hook library is listed explicitly while the ha section is set.
	DuplicateHookLibrary ErrorKind = "DuplicateHookLibrary"
	// The rendered file path cannot be used in the include directive.
	InvalidIncludePath ErrorKind = "InvalidIncludePath"
)

// Error returned when the manifest violates a constraint. No files are
// rendered for the manifest returning it. The subject is the offending
// entity, e.g., a subnet prefix or a peer name.
type ConfigError struct {
	Kind     ErrorKind
	Protocol daemonname.Name
	Subject  string
	Message  string
}

var _ error = (*ConfigError)(nil)

// Creates a configuration error with the formatted message.
func newConfigError(kind ErrorKind, protocol daemonname.Name, subject string, format string, args ...any) *ConfigError {
	return &ConfigError{
		Kind:     kind,
		Protocol: protocol,
		Subject:  subject,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Returns the error message prefixed with the protocol.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s configuration: %s", e.Protocol, e.Message)
}

// Checks if the error (or any error it wraps) is a configuration error of
// the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind == kind
	}
	return false
}
