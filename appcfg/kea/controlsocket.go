package keaconfig

// Control socket types.
const (
	SocketTypeUnix  = "unix"
	SocketTypeHTTP  = "http"
	SocketTypeHTTPS = "https"
)

// Default port of the HTTP control socket.
const DefaultControlSocketPort int64 = 8000

// A structure representing a configuration of a single control socket in
// the Kea.
type ControlSocket struct {
	// Available values are "unix", "http" and "https".
	// The "http" and "https" types are supported since Kea 2.7.2.
	SocketType string `json:"socket-type"`
	// Only for unix sockets.
	SocketName    *string `json:"socket-name,omitempty"`
	SocketAddress *string `json:"socket-address,omitempty"`
	SocketPort    *int64  `json:"socket-port,omitempty"`
}

// Indicates if the control socket is a unix domain socket.
func (cs ControlSocket) IsUnix() bool {
	return cs.SocketType == "" || cs.SocketType == SocketTypeUnix
}

// Returns a port number or the default port if the port is not set.
func (cs ControlSocket) GetPort() int64 {
	if cs.IsUnix() {
		return 0
	}
	if cs.SocketPort != nil {
		return *cs.SocketPort
	}
	return DefaultControlSocketPort
}

// Return a socket address or socket path. It normalizes some special values.
func (cs ControlSocket) GetAddress() string {
	if cs.IsUnix() {
		if cs.SocketName == nil {
			return ""
		}
		return *cs.SocketName
	}

	if cs.SocketAddress == nil {
		return "127.0.0.1"
	}
	address := *cs.SocketAddress
	switch address {
	case "0.0.0.0", "":
		address = "127.0.0.1"
	case "::":
		address = "::1"
	}
	return address
}
