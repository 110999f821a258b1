package keactrl

// HA status of the server answering the status-get command.
type HALocalStatus struct {
	ServerName string   `json:"server-name"`
	Role       string   `json:"role"`
	Scopes     []string `json:"scopes"`
	State      string   `json:"state"`
}

// HA status of the partner as seen by the answering server.
type HARemoteStatus struct {
	ServerName      string   `json:"server-name"`
	Role            string   `json:"role"`
	Age             int64    `json:"age"`
	InTouch         bool     `json:"in-touch"`
	LastScopes      []string `json:"last-scopes"`
	LastState       string   `json:"last-state"`
	CommInterrupted *bool    `json:"communication-interrupted"`
}

type HAServersStatus struct {
	Local  HALocalStatus  `json:"local"`
	Remote HARemoteStatus `json:"remote"`
}

// Entry of the high-availability list.
type HARelationshipStatus struct {
	HAMode    string          `json:"ha-mode"`
	HAServers HAServersStatus `json:"ha-servers"`
}

// Arguments of the status-get response. Old daemons report a single pair
// under ha-servers while the current ones report the high-availability
// list, so both are decoded.
type StatusGetRespArgs struct {
	Pid       int64                  `json:"pid"`
	Uptime    int64                  `json:"uptime"`
	Reload    int64                  `json:"reload"`
	HAServers *HAServersStatus       `json:"ha-servers"`
	HA        []HARelationshipStatus `json:"high-availability"`
}

// Returns the local status in the first HA relationship or nil when the
// HA is disabled.
func (args *StatusGetRespArgs) GetLocalHAStatus() *HALocalStatus {
	switch {
	case args == nil:
		return nil
	case len(args.HA) > 0:
		return &args.HA[0].HAServers.Local
	case args.HAServers != nil:
		return &args.HAServers.Local
	default:
		return nil
	}
}

// Returns the mode of the first HA relationship. Old daemons don't report
// it.
func (args *StatusGetRespArgs) GetHAMode() string {
	if args == nil || len(args.HA) == 0 {
		return ""
	}
	return args.HA[0].HAMode
}

// Arguments of the ha-heartbeat response.
type HAHeartbeatRespArgs struct {
	DateTime          string   `json:"date-time"`
	Scopes            []string `json:"scopes"`
	State             string   `json:"state"`
	UnsentUpdateCount int64    `json:"unsent-update-count"`
}
