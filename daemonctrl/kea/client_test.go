package keactrl

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/h2non/gock.v1"
	keaconfig "isc.org/keaconverge/appcfg/kea"
	"isc.org/keaconverge/datamodel/daemonname"
	"isc.org/keaconverge/testutil"
	keautil "isc.org/keaconverge/util"
)

// Starts a fake Kea control socket. The handler returns the response to
// the received command.
func startFakeKeaSocket(t *testing.T, path string, handler func(request map[string]any) string) {
	t.Helper()
	listener, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				var request map[string]any
				if err := json.NewDecoder(conn).Decode(&request); err != nil {
					return
				}
				_, _ = conn.Write([]byte(handler(request)))
			}(conn)
		}
	}()
}

// Test sending the command over the unix domain socket.
func TestUnixSocketClientSendCommand(t *testing.T) {
	// Arrange
	sb := testutil.NewSandbox()
	defer sb.Close()
	path := sb.Path("kea4.sock")

	received := make(chan map[string]any, 1)
	startFakeKeaSocket(t, path, func(request map[string]any) string {
		received <- request
		return `{ "result": 0, "text": "", "arguments": { "pid": 42 } }`
	})
	client := NewUnixSocketClient(path)

	// Act
	response, err := client.SendCommand(context.Background(), NewCommandBase(StatusGet, ""))

	// Assert
	require.NoError(t, err)
	require.Equal(t, map[string]any{"command": "status-get"}, <-received)
	require.Equal(t, ResponseSuccess, response.GetResult())
	require.JSONEq(t, `{ "pid": 42 }`, string(response.GetArguments()))
}

// Test that the error is returned when the socket doesn't exist.
func TestUnixSocketClientNoSocket(t *testing.T) {
	sb := testutil.NewSandbox()
	defer sb.Close()

	client := NewUnixSocketClient(sb.Path("missing.sock"))
	response, err := client.SendCommand(context.Background(), NewCommandBase(StatusGet, ""))

	require.Nil(t, response)
	require.ErrorContains(t, err, "cannot connect to the Kea control socket")
}

// Test that the waiting for the response is interrupted when the context
// is done.
func TestUnixSocketClientContextTimeout(t *testing.T) {
	// Arrange
	sb := testutil.NewSandbox()
	defer sb.Close()
	path := sb.Path("kea4.sock")

	listener, err := net.Listen("unix", path)
	require.NoError(t, err)
	defer listener.Close()
	go func() {
		// Accept the connection and never respond.
		conn, err := listener.Accept()
		if err == nil {
			defer conn.Close()
			time.Sleep(time.Second)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// Act
	_, err = NewUnixSocketClient(path).SendCommand(ctx, NewCommandBase(StatusGet, ""))

	// Assert
	require.ErrorContains(t, err, "failed to read the response to the status-get command")
}

// Test that the malformed response is reported.
func TestUnixSocketClientMalformedResponse(t *testing.T) {
	sb := testutil.NewSandbox()
	defer sb.Close()
	path := sb.Path("kea4.sock")
	startFakeKeaSocket(t, path, func(map[string]any) string {
		return `{ "result": "foo" }`
	})

	_, err := NewUnixSocketClient(path).SendCommand(context.Background(), NewCommandBase(StatusGet, ""))

	require.ErrorContains(t, err, "failed to parse the Kea response")
}

// Test sending the command to the Kea Control Agent which wraps the
// response in an array.
func TestHTTPClientSendCommand(t *testing.T) {
	// Arrange
	defer gock.Off()
	gock.New("http://localhost:8000/").
		Post("/").
		MatchHeader("Content-Type", "application/json").
		JSON(map[string]any{"command": "list-commands", "service": []string{"dhcp4"}}).
		Reply(http.StatusOK).
		JSON([]map[string]any{{
			"result":    0,
			"arguments": []string{"list-commands", "status-get"},
		}})

	client := NewHTTPClient("http://localhost:8000/")
	gock.InterceptClient(client.innerClient.GetClient())

	// Act
	response, err := client.SendCommand(context.Background(), NewCommandBase(ListCommands, daemonname.DHCPv4))

	// Assert
	require.NoError(t, err)
	require.Equal(t, ResponseSuccess, response.GetResult())
	require.JSONEq(t, `["list-commands", "status-get"]`, string(response.GetArguments()))
	require.True(t, gock.IsDone())
}

// Test that the Basic Auth credentials are sent.
func TestHTTPClientBasicAuth(t *testing.T) {
	defer gock.Off()
	gock.New("http://localhost:8000/").
		Post("/").
		MatchHeader("Authorization", "^Basic YWRtaW46c2VjcmV0$").
		Reply(http.StatusOK).
		BodyString(`{ "result": 0 }`)

	client := NewHTTPClient("http://localhost:8000/")
	client.SetBasicAuth("admin", "secret")
	client.SetRequestTimeout(time.Second)
	gock.InterceptClient(client.innerClient.GetClient())

	response, err := client.SendCommand(context.Background(), NewCommandBase(StatusGet, ""))

	require.NoError(t, err)
	require.Equal(t, ResponseSuccess, response.GetResult())
}

// Test that the non-success HTTP status is reported.
func TestHTTPClientErrorStatus(t *testing.T) {
	defer gock.Off()
	gock.New("http://localhost:8000/").
		Post("/").
		Reply(http.StatusUnauthorized).
		BodyString(`{ "result": 401, "text": "Unauthorized" }`)

	client := NewHTTPClient("http://localhost:8000/")
	gock.InterceptClient(client.innerClient.GetClient())

	response, err := client.SendCommand(context.Background(), NewCommandBase(StatusGet, ""))

	require.Nil(t, response)
	require.ErrorContains(t, err, "received HTTP status 401")
}

// Test creating the client for the rendered control socket.
func TestNewClientForControlSocket(t *testing.T) {
	t.Run("unix", func(t *testing.T) {
		client, err := NewClientForControlSocket(&keaconfig.ControlSocket{
			SocketType: keaconfig.SocketTypeUnix,
			SocketName: keautil.Ptr("/var/run/kea/kea-dhcp4-ctrl.sock"),
		})
		require.NoError(t, err)
		require.IsType(t, &UnixSocketClient{}, client)
		require.Equal(t, "/var/run/kea/kea-dhcp4-ctrl.sock", client.(*UnixSocketClient).path)
	})

	t.Run("unix without name", func(t *testing.T) {
		_, err := NewClientForControlSocket(&keaconfig.ControlSocket{})
		require.Error(t, err)
	})

	t.Run("http", func(t *testing.T) {
		client, err := NewClientForControlSocket(&keaconfig.ControlSocket{
			SocketType:    keaconfig.SocketTypeHTTP,
			SocketAddress: keautil.Ptr("0.0.0.0"),
		})
		require.NoError(t, err)
		require.IsType(t, &HTTPClient{}, client)
		require.Equal(t, "http://127.0.0.1:8000/", client.(*HTTPClient).url)
	})

	t.Run("https ipv6", func(t *testing.T) {
		client, err := NewClientForControlSocket(&keaconfig.ControlSocket{
			SocketType:    keaconfig.SocketTypeHTTPS,
			SocketAddress: keautil.Ptr("::"),
			SocketPort:    keautil.Ptr(int64(8004)),
		})
		require.NoError(t, err)
		require.Equal(t, "https://[::1]:8004/", client.(*HTTPClient).url)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewClientForControlSocket(&keaconfig.ControlSocket{SocketType: "tcp"})
		require.ErrorContains(t, err, "unsupported control socket type: tcp")
	})

	t.Run("nil", func(t *testing.T) {
		_, err := NewClientForControlSocket(nil)
		require.Error(t, err)
	})
}
