package compiler

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	keaconfig "isc.org/keaconverge/appcfg/kea"
	"isc.org/keaconverge/datamodel/daemonname"
	"isc.org/keaconverge/manifest"
	keautil "isc.org/keaconverge/util"
)

// Returns the base name of the default control socket of the daemon, e.g.,
// kea-dhcp4-ctrl.sock.
func defaultControlSocketName(protocol daemonname.Name) string {
	switch protocol {
	case daemonname.D2:
		return "kea-ddns-ctrl.sock"
	default:
		return fmt.Sprintf("kea-dhcp%d-ctrl.sock", protocol.Universe())
	}
}

// Renders the control socket. The unix socket in the run directory is used
// by default. The control socket is always rendered so the configuration
// can be reloaded and the status can be queried.
func renderControlSocket(protocol daemonname.Name, socket *manifest.ControlSocket, runDir string) *keaconfig.ControlSocket {
	if socket == nil {
		socket = &manifest.ControlSocket{}
	}
	rendered := &keaconfig.ControlSocket{
		SocketType:    socket.SocketType,
		SocketName:    socket.SocketName,
		SocketAddress: socket.SocketAddress,
		SocketPort:    socket.SocketPort,
	}
	if rendered.SocketType == "" {
		rendered.SocketType = keaconfig.SocketTypeUnix
	}
	if rendered.IsUnix() && rendered.SocketName == nil {
		rendered.SocketName = keautil.Ptr(filepath.Join(runDir, defaultControlSocketName(protocol)))
	}
	return rendered
}

// Renders the logger of the daemon. The log file in the log directory is
// used by default.
func renderLoggers(protocol daemonname.Name, logging *manifest.Logging, logDir string) []keaconfig.Logger {
	if logging == nil {
		logging = &manifest.Logging{}
	}
	logger := keaconfig.Logger{
		Name:       keautil.ValueOr(logging.Name, protocol.LoggerName()),
		Severity:   logging.Severity,
		DebugLevel: logging.DebugLevel,
	}
	if logger.Severity == "" {
		logger.Severity = manifest.DefaultLogSeverity
	}
	output := logging.Output
	if output == "" {
		output = filepath.Join(logDir, protocol.LoggerName()+".log")
	}
	logger.OutputOptions = []keaconfig.LoggerOutputOptions{{
		Output:  output,
		MaxSize: logging.MaxSize,
		MaxVer:  logging.MaxVer,
		Flush:   logging.Flush,
	}}
	return []keaconfig.Logger{logger}
}

// Renders the user-specified hook libraries in the original order.
func renderHookLibraries(entries []manifest.HookEntry) (keaconfig.HookLibraries, error) {
	hooks := keaconfig.HookLibraries{}
	for _, entry := range entries {
		hook := keaconfig.HookLibrary{
			Library: entry.Library,
		}
		if entry.Parameters != nil {
			params, err := toRawJSON(normalize(entry.Parameters))
			if err != nil {
				return nil, errors.WithMessagef(err, "invalid parameters of the hook library %s", entry.Library)
			}
			hook.Parameters = params
		}
		hooks = append(hooks, hook)
	}
	return hooks, nil
}

func renderOptionData(options []manifest.OptionData) []keaconfig.SingleOptionData {
	if len(options) == 0 {
		return nil
	}
	rendered := make([]keaconfig.SingleOptionData, 0, len(options))
	for _, option := range options {
		rendered = append(rendered, keaconfig.SingleOptionData{
			AlwaysSend: option.AlwaysSend,
			Code:       option.Code,
			CSVFormat:  option.CSVFormat,
			Data:       option.Data,
			Name:       option.Name,
			Space:      option.Space,
		})
	}
	return rendered
}

func renderClientClasses(classes []manifest.ClientClass) []keaconfig.ClientClass {
	if len(classes) == 0 {
		return nil
	}
	rendered := make([]keaconfig.ClientClass, 0, len(classes))
	for _, class := range classes {
		rendered = append(rendered, keaconfig.ClientClass{
			Name:           class.Name,
			Test:           class.Test,
			OnlyIfRequired: class.OnlyIfRequired,
			NextServer:     class.NextServer,
			BootFileName:   class.BootFileName,
			OptionData:     renderOptionData(class.OptionData),
		})
	}
	return rendered
}

func renderReservations(reservations []manifest.Reservation) []keaconfig.Reservation {
	if len(reservations) == 0 {
		return nil
	}
	rendered := make([]keaconfig.Reservation, 0, len(reservations))
	for _, reservation := range reservations {
		rendered = append(rendered, keaconfig.Reservation{
			HWAddress:      reservation.HWAddress,
			DUID:           reservation.DUID,
			CircuitID:      reservation.CircuitID,
			ClientID:       reservation.ClientID,
			FlexID:         reservation.FlexID,
			IPAddress:      reservation.IPAddress,
			IPAddresses:    reservation.IPAddresses,
			Prefixes:       reservation.Prefixes,
			Hostname:       reservation.Hostname,
			ClientClasses:  reservation.ClientClasses,
			NextServer:     reservation.NextServer,
			BootFileName:   reservation.BootFileName,
			ServerHostname: reservation.ServerHostname,
			OptionData:     renderOptionData(reservation.OptionData),
		})
	}
	return rendered
}
