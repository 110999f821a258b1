package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"isc.org/keaconverge"
	"isc.org/keaconverge/compiler"
	"isc.org/keaconverge/converge"
	keactrl "isc.org/keaconverge/daemonctrl/kea"
	"isc.org/keaconverge/datamodel/daemonname"
	keautil "isc.org/keaconverge/util"
)

// Prefix of the environment variables bound to the flags.
const envPrefix = "KEA_CONVERGE_"

// The oldest Kea version accepting the rendered configuration.
var minimumKeaVersion = keautil.NewSemanticVersion(2, 4, 0) //nolint:gochecknoglobals

func envVars(name string) []string {
	return []string{envPrefix + name}
}

// Creates the runner from the flags shared by the manifest commands.
func newRunner(c *cli.Context) *converge.Runner {
	settings := converge.Settings{
		ManifestPath:       c.Path("manifest"),
		SharedNetworksPath: c.Path("shared-networks"),
		Fqdn:               c.String("fqdn"),
		Check:              c.Bool("check"),
		Reload:             c.Bool("reload"),
		MetricsFile:        c.Path("metrics-file"),
		BackupDir:          c.Path("backup-dir"),
	}
	return converge.NewRunner(settings, keautil.NewSystemCommandExecutor())
}

// Prints the changes made by the convergence run.
func printResult(writer io.Writer, result *converge.Result) {
	for _, daemon := range result.Daemons {
		if !daemon.IsChanged() {
			fmt.Fprintf(writer, "%s: up to date\n", daemon.Daemon)
			continue
		}
		fmt.Fprintf(writer, "%s: %d written, %d removed", daemon.Daemon, len(daemon.Written), len(daemon.Removed))
		if daemon.Checked {
			fmt.Fprint(writer, ", checked")
		}
		if daemon.Reloaded {
			fmt.Fprint(writer, ", reloaded")
		}
		fmt.Fprintln(writer)
		for _, path := range daemon.Written {
			fmt.Fprintf(writer, "  + %s\n", path)
		}
		for _, path := range daemon.Removed {
			fmt.Fprintf(writer, "  - %s\n", path)
		}
		if daemon.Backup != "" {
			fmt.Fprintf(writer, "  backup: %s\n", daemon.Backup)
		}
	}
}

// Execute apply command. In the watch mode it runs until interrupted.
func runApply(c *cli.Context) error {
	runner := newRunner(c)
	if !c.Bool("watch") {
		result, err := runner.Run(c.Context)
		if result != nil {
			printResult(c.App.Writer, result)
		}
		return err
	}

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	watcher, err := converge.NewWatcher(runner, c.Duration("watch-delay"))
	if err != nil {
		return err
	}
	watcher.SetRunCallback(func(result *converge.Result, _ error) {
		if result != nil {
			printResult(c.App.Writer, result)
		}
	})
	return watcher.Watch(ctx)
}

// Returns the file sets of the selected daemon or all enabled daemons.
func compileSelected(c *cli.Context) ([]*compiler.FileSet, error) {
	fileSets, err := newRunner(c).Compile()
	if err != nil {
		return nil, err
	}
	if !c.IsSet("protocol") {
		return fileSets, nil
	}
	protocol, ok := daemonname.Parse(c.String("protocol"))
	if !ok {
		return nil, errors.Errorf("unknown protocol '%s'", c.String("protocol"))
	}
	for _, fileSet := range fileSets {
		if fileSet.Protocol == protocol {
			return []*compiler.FileSet{fileSet}, nil
		}
	}
	return nil, errors.Errorf("%s is not enabled in the manifest", protocol)
}

// Execute render command. It prints the files without writing them.
func runRender(c *cli.Context) error {
	fileSets, err := compileSelected(c)
	if err != nil {
		return err
	}
	for _, fileSet := range fileSets {
		if c.Bool("resolve") {
			content, err := fileSet.Resolve(fileSet.MainFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "# %s\n%s", fileSet.MainFile, content)
			continue
		}
		for _, file := range fileSet.GetFiles() {
			fmt.Fprintf(c.App.Writer, "# %s\n%s", file.Path, file.Content)
		}
	}
	return nil
}

// Execute check command. It validates the manifest without writing the
// files.
func runCheck(c *cli.Context) error {
	fileSets, err := compileSelected(c)
	if err != nil {
		return err
	}
	for _, fileSet := range fileSets {
		fmt.Fprintf(c.App.Writer, "%s: valid, %d files\n", fileSet.Protocol, fileSet.Len())
	}
	return nil
}

// Creates the controller for the daemon specified with the connection
// flags.
func newController(c *cli.Context) (*keactrl.Controller, error) {
	var client keactrl.Client
	switch {
	case c.IsSet("socket") && c.IsSet("url"):
		return nil, errors.New("the --socket and --url flags are mutually exclusive")
	case c.IsSet("socket"):
		client = keactrl.NewUnixSocketClient(c.Path("socket"))
	case c.IsSet("url"):
		httpClient := keactrl.NewHTTPClient(c.String("url"))
		if c.IsSet("user") {
			httpClient.SetBasicAuth(c.String("user"), c.String("password"))
		}
		httpClient.SetRequestTimeout(c.Duration("request-timeout"))
		client = httpClient
	default:
		return nil, errors.New("the --socket or --url flag is required")
	}

	var daemon daemonname.Name
	if c.IsSet("daemon") {
		var ok bool
		daemon, ok = daemonname.Parse(c.String("daemon"))
		if !ok {
			return nil, errors.Errorf("unknown daemon '%s'", c.String("daemon"))
		}
	}
	return keactrl.NewController(client, daemon), nil
}

func printJSON(writer io.Writer, value any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return errors.WithStack(encoder.Encode(value))
}

// Execute status command.
func runStatus(c *cli.Context) error {
	controller, err := newController(c)
	if err != nil {
		return err
	}
	status, err := controller.StatusGet(c.Context)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "pid: %d, uptime: %ds, reloaded: %ds ago\n", status.Pid, status.Uptime, status.Reload)
	// Older daemons may lack the version-get command.
	if version, err := controller.VersionGet(c.Context); err == nil {
		fmt.Fprintf(c.App.Writer, "version: %s\n", version.Semantic)
		if version.Semantic.LessThan(minimumKeaVersion) {
			log.Warnf("Kea %s is older than %s; the rendered configuration may be rejected",
				version.Semantic, minimumKeaVersion)
		}
	} else {
		log.WithError(err).Debug("Cannot get the daemon version")
	}
	switch {
	case len(status.HA) > 0:
		for _, relationship := range status.HA {
			printHAServers(c.App.Writer, relationship.HAMode, &relationship.HAServers)
		}
	case status.HAServers != nil:
		printHAServers(c.App.Writer, "", status.HAServers)
	default:
		fmt.Fprintln(c.App.Writer, "HA: disabled")
	}

	if !c.Bool("config") {
		return nil
	}
	config, err := controller.ConfigGet(c.Context)
	if err != nil {
		return err
	}
	keautil.HideSensitiveData(&config)
	return printJSON(c.App.Writer, config)
}

func printHAServers(writer io.Writer, mode string, servers *keactrl.HAServersStatus) {
	if mode != "" {
		fmt.Fprintf(writer, "HA %s:\n", mode)
	} else {
		fmt.Fprintln(writer, "HA:")
	}
	local := servers.Local
	fmt.Fprintf(writer, "  local %s (%s): %s, scopes: %v\n", local.ServerName, local.Role, local.State, local.Scopes)
	remote := servers.Remote
	if remote.ServerName != "" {
		fmt.Fprintf(writer, "  remote %s (%s): %s, in touch: %t, age: %ds\n",
			remote.ServerName, remote.Role, remote.LastState, remote.InTouch, remote.Age)
	}
}

// Execute ha-wait command.
func runHAWait(c *cli.Context) error {
	controller, err := newController(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()
	if err = controller.WaitForHAState(ctx, c.String("state"), c.Duration("interval")); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "HA state is %s\n", c.String("state"))
	return nil
}

// Configures the logging and loads the environment file. The variables
// from the file are visible to the flags of the subcommands because the
// subcommand flags are parsed after this function returns.
func before(c *cli.Context) error {
	level := c.String("log-level")
	if c.IsSet("env-file") {
		err := keautil.LoadEnvironmentFileToSetter(c.Path("env-file"), keautil.ProcessEnvironmentSetter{})
		if err != nil {
			return errors.WithMessagef(err, "the '%s' environment file is invalid", c.Path("env-file"))
		}
		if value, ok := os.LookupEnv(envPrefix + "LOG_LEVEL"); ok && !c.IsSet("log-level") {
			level = value
		}
	}
	return keautil.SetupLogging(c.App.ErrWriter, level)
}

// Prepare urfave cli app with all flags and commands defined.
func setupApp() *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, c.App.Version)
	}

	manifestFlags := []cli.Flag{
		&cli.PathFlag{
			Name:     "manifest",
			Usage:    "The manifest file in the YAML or JSON format",
			Required: true,
			Aliases:  []string{"m"},
			EnvVars:  envVars("MANIFEST"),
		},
		&cli.PathFlag{
			Name:    "shared-networks",
			Usage:   "The file with the shared networks passed to Kea verbatim",
			Aliases: []string{"s"},
			EnvVars: envVars("SHARED_NETWORKS"),
		},
		&cli.StringFlag{
			Name:    "fqdn",
			Usage:   "The local FQDN used as the default HA this_server; detected if not provided",
			EnvVars: envVars("FQDN"),
		},
	}

	var applyFlags []cli.Flag
	applyFlags = append(applyFlags, manifestFlags...)
	applyFlags = append(applyFlags,
		&cli.BoolFlag{
			Name:    "check",
			Usage:   "Check the changed files with the Kea binary before keeping them",
			EnvVars: envVars("CHECK"),
		},
		&cli.BoolFlag{
			Name:    "reload",
			Usage:   "Send the config-reload command to the daemons with changed files",
			EnvVars: envVars("RELOAD"),
		},
		&cli.BoolFlag{
			Name:    "watch",
			Usage:   "Keep running and converge whenever the input files change",
			EnvVars: envVars("WATCH"),
		},
		&cli.DurationFlag{
			Name:    "watch-delay",
			Usage:   "The delay between the last input file change and the convergence run",
			Value:   converge.DefaultWatchDelay,
			EnvVars: envVars("WATCH_DELAY"),
		},
		&cli.PathFlag{
			Name:    "metrics-file",
			Usage:   "The file where the run metrics are written in the Prometheus text format",
			EnvVars: envVars("METRICS_FILE"),
		},
		&cli.PathFlag{
			Name:    "backup-dir",
			Usage:   "The directory where the previous content of the replaced and removed files is archived",
			EnvVars: envVars("BACKUP_DIR"),
		},
	)

	var selectFlags []cli.Flag
	selectFlags = append(selectFlags, manifestFlags...)
	selectFlags = append(selectFlags,
		&cli.StringFlag{
			Name:    "protocol",
			Usage:   "Limit the output to one daemon: dhcp4, dhcp6 or d2",
			Aliases: []string{"p"},
			EnvVars: envVars("PROTOCOL"),
		},
	)

	var renderFlags []cli.Flag
	renderFlags = append(renderFlags, selectFlags...)
	renderFlags = append(renderFlags,
		&cli.BoolFlag{
			Name:    "resolve",
			Usage:   "Print the main files with the include directives replaced by the included content",
			EnvVars: envVars("RESOLVE"),
		},
	)

	connectionFlags := []cli.Flag{
		&cli.PathFlag{
			Name:    "socket",
			Usage:   "The Kea control socket path",
			EnvVars: envVars("SOCKET"),
		},
		&cli.StringFlag{
			Name:    "url",
			Usage:   "The URL of the Kea HTTP control socket or the Control Agent",
			EnvVars: envVars("URL"),
		},
		&cli.StringFlag{
			Name:    "daemon",
			Usage:   "The daemon the Control Agent forwards the commands to",
			EnvVars: envVars("DAEMON"),
		},
		&cli.StringFlag{
			Name:    "user",
			Usage:   "The Basic Auth user of the HTTP control socket",
			EnvVars: envVars("USER"),
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "The Basic Auth password of the HTTP control socket",
			EnvVars: envVars("PASSWORD"),
		},
		&cli.DurationFlag{
			Name:    "request-timeout",
			Usage:   "The timeout of the HTTP requests",
			Value:   10 * time.Second,
			EnvVars: envVars("REQUEST_TIMEOUT"),
		},
	}

	var statusFlags []cli.Flag
	statusFlags = append(statusFlags, connectionFlags...)
	statusFlags = append(statusFlags,
		&cli.BoolFlag{
			Name:    "config",
			Usage:   "Print the current configuration with the secrets hidden",
			EnvVars: envVars("CONFIG"),
		},
	)

	var haWaitFlags []cli.Flag
	haWaitFlags = append(haWaitFlags, connectionFlags...)
	haWaitFlags = append(haWaitFlags,
		&cli.StringFlag{
			Name:     "state",
			Usage:    "The awaited HA state of the local server, e.g., hot-standby",
			Required: true,
			EnvVars:  envVars("STATE"),
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "The maximum waiting time",
			Value:   time.Minute,
			EnvVars: envVars("TIMEOUT"),
		},
		&cli.DurationFlag{
			Name:    "interval",
			Usage:   "The interval between the status checks",
			Value:   keactrl.DefaultHAStatePollInterval,
			EnvVars: envVars("INTERVAL"),
		},
	)

	app := &cli.App{
		Name:     "kea-converge",
		Usage:    "Render the Kea configuration files from a manifest and keep them converged",
		Version:  keaconverge.Version,
		HelpName: "kea-converge",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    "env-file",
				Usage:   "The file with the KEY=VALUE environment variables loaded before the command runs",
				EnvVars: envVars("ENV_FILE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Logging level: debug, info, warning or error",
				Value:   "info",
				EnvVars: envVars("LOG_LEVEL"),
			},
		},
		Before: before,
		Commands: []*cli.Command{
			{
				Name:      "apply",
				Usage:     "Write the configuration files and remove the stale ones",
				UsageText: "kea-converge apply -m manifest [-s shared-networks] [--check] [--reload] [--watch]",
				Flags:     applyFlags,
				Category:  "Configuration",
				Action:    runApply,
			},
			{
				Name:      "render",
				Usage:     "Print the configuration files without writing them",
				UsageText: "kea-converge render -m manifest [-p protocol] [--resolve]",
				Flags:     renderFlags,
				Category:  "Configuration",
				Action:    runRender,
			},
			{
				Name:      "check",
				Usage:     "Validate the manifest",
				UsageText: "kea-converge check -m manifest [-p protocol]",
				Flags:     selectFlags,
				Category:  "Configuration",
				Action:    runCheck,
			},
			{
				Name:      "status",
				Usage:     "Print the daemon status including the HA state",
				UsageText: "kea-converge status --socket path | --url url [--config]",
				Flags:     statusFlags,
				Category:  "Control",
				Action:    runStatus,
			},
			{
				Name:      "ha-wait",
				Usage:     "Wait until the local server reaches the HA state",
				UsageText: "kea-converge ha-wait --socket path | --url url --state state [--timeout duration]",
				Flags:     haWaitFlags,
				Category:  "Control",
				Action:    runHAWait,
			},
			{
				Name:      "version",
				Usage:     "Print the version and the build date",
				UsageText: "kea-converge version",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "kea-converge %s (built %s)\n", keaconverge.Version, keaconverge.BuildDate)
					return nil
				},
			},
		},
	}

	return app
}

func main() {
	app := setupApp()
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
