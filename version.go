package keaconverge

// Version of kea-converge. It is set at build time with
// -ldflags "-X isc.org/keaconverge.Version=...".
var Version = "1.0.0" //nolint:gochecknoglobals

// Build date, set at build time.
var BuildDate = "unset" //nolint:gochecknoglobals
