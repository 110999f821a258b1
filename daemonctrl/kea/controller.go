package keactrl

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"isc.org/keaconverge/datamodel/daemonname"
	keautil "isc.org/keaconverge/util"
)

// Default interval between the status-get commands sent while waiting for
// the HA state.
const DefaultHAStatePollInterval = time.Second

// Sends the typed commands to a single Kea daemon. The daemon name is
// included in the commands as the service list when the commands pass
// through the Kea Control Agent. It is empty when the client talks to the
// daemon directly.
type Controller struct {
	client Client
	daemon daemonname.Name
}

// Creates the controller sending the commands over the client.
func NewController(client Client, daemon daemonname.Name) *Controller {
	return &Controller{
		client: client,
		daemon: daemon,
	}
}

// Sends the command and checks the result. The response arguments are
// decoded into the provided value unless it is nil.
func (c *Controller) send(ctx context.Context, command *Command, arguments any) (*Response, error) {
	response, err := c.client.SendCommand(ctx, command)
	if err != nil {
		return nil, err
	}
	if err = response.GetError(); err != nil {
		return response, errors.WithMessagef(err, "%s command failed", command.GetCommand())
	}
	if arguments != nil {
		if err = response.DecodeArguments(arguments); err != nil {
			return response, errors.WithMessagef(err, "invalid response to the %s command", command.GetCommand())
		}
	}
	return response, nil
}

// Returns the daemon status including the HA state.
func (c *Controller) StatusGet(ctx context.Context) (*StatusGetRespArgs, error) {
	args := &StatusGetRespArgs{}
	if _, err := c.send(ctx, NewCommandBase(StatusGet, c.daemon), args); err != nil {
		return nil, err
	}
	return args, nil
}

// Sends the heartbeat to the HA hook library and returns the HA state of
// the daemon.
func (c *Controller) HAHeartbeat(ctx context.Context) (*HAHeartbeatRespArgs, error) {
	args := &HAHeartbeatRespArgs{}
	if _, err := c.send(ctx, NewCommandBase(HAHeartbeat, c.daemon), args); err != nil {
		return nil, err
	}
	return args, nil
}

// Returns the names of the commands supported by the daemon, including
// the ones provided by the loaded hook libraries.
func (c *Controller) ListCommands(ctx context.Context) ([]CommandName, error) {
	var commands []CommandName
	if _, err := c.send(ctx, NewCommandBase(ListCommands, c.daemon), &commands); err != nil {
		return nil, err
	}
	return commands, nil
}

// Returns the configuration currently used by the daemon.
func (c *Controller) ConfigGet(ctx context.Context) (map[string]any, error) {
	config := map[string]any{}
	if _, err := c.send(ctx, NewCommandBase(ConfigGet, c.daemon), &config); err != nil {
		return nil, err
	}
	return config, nil
}

// Version of the Kea daemon returned by the version-get command.
type Version struct {
	// Version string, e.g., 2.6.1.
	Text string
	// Extended version including the build details.
	Extended string
	// Parsed version number.
	Semantic keautil.SemanticVersion
}

// Returns the version of the daemon.
func (c *Controller) VersionGet(ctx context.Context) (*Version, error) {
	var args struct {
		Extended string `json:"extended"`
	}
	response, err := c.send(ctx, NewCommandBase(VersionGet, c.daemon), &args)
	if err != nil {
		return nil, err
	}
	semantic, err := keautil.ParseSemanticVersion(response.GetText())
	if err != nil {
		return nil, errors.WithMessage(err, "invalid response to the version-get command")
	}
	return &Version{
		Text:     response.GetText(),
		Extended: args.Extended,
		Semantic: semantic,
	}, nil
}

// Returns the DHCPv4 leases. The leases from all subnets are returned when
// no subnet identifiers are specified. It requires the lease_cmds hook
// library.
func (c *Controller) Lease4GetAll(ctx context.Context, subnetIDs ...int64) ([]Lease4, error) {
	args := &Lease4GetAllRespArgs{}
	if _, err := c.send(ctx, NewCommandLease4GetAll(c.daemon, subnetIDs...), args); err != nil {
		return nil, err
	}
	return args.Leases, nil
}

// Instructs the daemon to reload its configuration from the configuration
// file.
func (c *Controller) ConfigReload(ctx context.Context) error {
	_, err := c.send(ctx, NewCommandBase(ConfigReload, c.daemon), nil)
	return err
}

// Checks the configuration without applying it. The configuration is the
// complete document including the root key.
func (c *Controller) ConfigTest(ctx context.Context, config map[string]any) error {
	_, err := c.send(ctx, NewCommandConfigTest(config, c.daemon), nil)
	return err
}

// Polls the daemon status until the local HA state matches the expected
// one or the context is done. The communication errors don't interrupt
// the polling because the daemon may be restarting.
func (c *Controller) WaitForHAState(ctx context.Context, state string, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultHAStatePollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastState := ""
	for {
		status, err := c.StatusGet(ctx)
		switch {
		case err != nil:
			log.WithError(err).Debug("Cannot get the HA status")
		case status.GetLocalHAStatus() == nil:
			log.Debug("HA is not enabled in the daemon")
		default:
			lastState = status.GetLocalHAStatus().State
			if lastState == state {
				return nil
			}
			log.WithFields(log.Fields{
				"state":    lastState,
				"expected": state,
			}).Debug("Waiting for the HA state")
		}

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "HA state did not reach %s, last state: '%s'", state, lastState)
		case <-ticker.C:
		}
	}
}
