package keactrl

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	keaconfig "isc.org/keaconverge/appcfg/kea"
)

// Sends the commands to Kea over the control channel and returns the
// parsed responses. The non-success result codes are not treated as
// errors at this level; the returned error indicates a communication
// problem or a malformed response.
type Client interface {
	SendCommand(ctx context.Context, command SerializableCommand) (*Response, error)
}

// Client communicating with the Kea daemon over its unix domain control
// socket. Each command is sent over a new connection.
type UnixSocketClient struct {
	path   string
	dialer net.Dialer
}

var _ Client = (*UnixSocketClient)(nil)

// Creates a client sending the commands to the unix domain socket.
func NewUnixSocketClient(path string) *UnixSocketClient {
	return &UnixSocketClient{
		path: path,
	}
}

// Sends the command to the unix domain socket and waits for the response.
// The connection is interrupted when the context is done.
func (c *UnixSocketClient) SendCommand(ctx context.Context, command SerializableCommand) (*Response, error) {
	payload, err := command.Marshal()
	if err != nil {
		return nil, err
	}

	conn, err := c.dialer.DialContext(ctx, "unix", c.path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot connect to the Kea control socket %s", c.path)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	log.WithFields(log.Fields{
		"socket":  c.path,
		"command": command.GetCommand(),
	}).Debug("Sending command to Kea")

	if _, err = conn.Write(payload); err != nil {
		return nil, errors.Wrapf(err, "failed to send the %s command to %s", command.GetCommand(), c.path)
	}

	// Kea doesn't delimit the responses. The decoder stops after the first
	// complete JSON value.
	var raw json.RawMessage
	if err = json.NewDecoder(conn).Decode(&raw); err != nil {
		return nil, errors.Wrapf(err, "failed to read the response to the %s command from %s", command.GetCommand(), c.path)
	}
	return ParseResponse(raw)
}

// Client communicating with the Kea Control Agent or the Kea daemon over
// HTTP. It uses a common REST client which is safe for concurrent use.
type HTTPClient struct {
	innerClient *resty.Client
	url         string
}

var _ Client = (*HTTPClient)(nil)

// Creates a client sending the commands to the specified URL.
func NewHTTPClient(url string) *HTTPClient {
	return &HTTPClient{
		innerClient: resty.New(),
		url:         url,
	}
}

// Sets the credentials used in the Basic Auth.
func (c *HTTPClient) SetBasicAuth(user, password string) {
	c.innerClient.SetBasicAuth(user, password)
}

// Sets custom timeout for REST client requests.
func (c *HTTPClient) SetRequestTimeout(timeout time.Duration) {
	c.innerClient.SetTimeout(timeout)
}

// Sends the command in the POST request body and parses the response.
func (c *HTTPClient) SendCommand(ctx context.Context, command SerializableCommand) (*Response, error) {
	payload, err := command.Marshal()
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"url":     c.url,
		"command": command.GetCommand(),
	}).Debug("Sending command to Kea")

	response, err := c.innerClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(c.url)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to send the %s command to %s", command.GetCommand(), c.url)
	}
	if response.IsError() {
		return nil, errors.Errorf("received HTTP status %d for the %s command from %s: %s",
			response.StatusCode(), command.GetCommand(), c.url, string(response.Body()))
	}
	return ParseResponse(response.Body())
}

// Creates the client for the control socket rendered in the daemon
// configuration.
func NewClientForControlSocket(socket *keaconfig.ControlSocket) (Client, error) {
	if socket == nil {
		return nil, errors.New("control socket is not configured")
	}
	switch socket.SocketType {
	case "", keaconfig.SocketTypeUnix:
		if socket.GetAddress() == "" {
			return nil, errors.New("unix control socket has no socket name")
		}
		return NewUnixSocketClient(socket.GetAddress()), nil
	case keaconfig.SocketTypeHTTP, keaconfig.SocketTypeHTTPS:
		host := net.JoinHostPort(socket.GetAddress(), strconv.FormatInt(socket.GetPort(), 10))
		return NewHTTPClient(fmt.Sprintf("%s://%s/", socket.SocketType, host)), nil
	default:
		return nil, errors.Errorf("unsupported control socket type: %s", socket.SocketType)
	}
}
