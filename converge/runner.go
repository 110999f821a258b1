package converge

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	keaconfig "isc.org/keaconverge/appcfg/kea"
	"isc.org/keaconverge/compiler"
	keactrl "isc.org/keaconverge/daemonctrl/kea"
	"isc.org/keaconverge/datamodel/daemonname"
	"isc.org/keaconverge/manifest"
	keautil "isc.org/keaconverge/util"
)

// Settings of the convergence run.
type Settings struct {
	// Path to the manifest file.
	ManifestPath string
	// Optional path to the shared networks data file.
	SharedNetworksPath string
	// Local FQDN used as the default HA this_server. It is detected when
	// empty.
	Fqdn string
	// Runs the daemon binaries with the -t switch on the changed files.
	Check bool
	// Sends the config-reload command to the daemons with changed files.
	Reload bool
	// Optional path to the Prometheus text file with the run metrics.
	MetricsFile string
	// Optional directory where the previous content of the replaced and
	// removed files is archived.
	BackupDir string
}

// Error returned when the daemon rejects the rendered configuration. The
// previous files are restored before the error is returned.
type SyntaxCheckError struct {
	Daemon daemonname.Name
	File   string
	Output string
	Err    error
}

// Returns the error message including the daemon output.
func (e *SyntaxCheckError) Error() string {
	return fmt.Sprintf("%s rejected the configuration file %s: %s\n%s",
		e.Daemon.Binary(), e.File, e.Err, e.Output)
}

// Returns the error returned by the command executor.
func (e *SyntaxCheckError) Unwrap() error {
	return e.Err
}

// Outcome of the convergence of a single daemon.
type DaemonResult struct {
	Daemon   daemonname.Name
	Written  []string
	Removed  []string
	Checked  bool
	Reloaded bool
	// Path to the archive with the previous files. Empty if no archive
	// has been written.
	Backup string
}

// Indicates if any file of the daemon has been written or removed.
func (r *DaemonResult) IsChanged() bool {
	return len(r.Written) > 0 || len(r.Removed) > 0
}

// Outcome of the convergence run.
type Result struct {
	Daemons []*DaemonResult
}

// Returns the total number of the written and removed files.
func (r *Result) GetChangeCount() int {
	count := 0
	for _, daemon := range r.Daemons {
		count += len(daemon.Written) + len(daemon.Removed)
	}
	return count
}

// Factory of the control clients for the rendered control sockets.
type ClientFactory func(socket *keaconfig.ControlSocket) (keactrl.Client, error)

// Compiles the manifest and converges the files on disk. A single runner
// must not run concurrently with itself.
type Runner struct {
	settings      Settings
	fileManager   *keautil.FileManager
	executor      keautil.CommandExecutor
	clientFactory ClientFactory
	lookupFqdn    func() (string, error)
	metrics       *Metrics
}

// Creates a runner using the system command executor and the control
// clients of the rendered control sockets.
func NewRunner(settings Settings, executor keautil.CommandExecutor) *Runner {
	return &Runner{
		settings:      settings,
		fileManager:   keautil.NewFileManager(),
		executor:      executor,
		clientFactory: keactrl.NewClientForControlSocket,
		lookupFqdn:    keautil.LocalFqdn,
		metrics:       NewMetrics(),
	}
}

// Replaces the factory of the control clients.
func (r *Runner) SetClientFactory(factory ClientFactory) {
	r.clientFactory = factory
}

// Returns the metrics collected by the runner.
func (r *Runner) GetMetrics() *Metrics {
	return r.metrics
}

// Loads the manifest and the shared networks.
func (r *Runner) load() (*manifest.Manifest, error) {
	m, err := manifest.Load(r.settings.ManifestPath)
	if err != nil {
		return nil, err
	}
	if r.settings.SharedNetworksPath != "" {
		sharedNetworks, err := manifest.LoadSharedNetworks(r.settings.SharedNetworksPath)
		if err != nil {
			return nil, err
		}
		m.SharedNetworks = sharedNetworks
	}
	return m, nil
}

// Returns the local FQDN. The detection failure is not fatal because the
// FQDN is only needed by the HA configurations without explicit
// this_server.
func (r *Runner) getFqdn() string {
	if r.settings.Fqdn != "" {
		return r.settings.Fqdn
	}
	fqdn, err := r.lookupFqdn()
	if err != nil {
		log.WithError(err).Warn("Cannot detect the local FQDN")
		return ""
	}
	return fqdn
}

// Compiles the manifest without touching the files.
func (r *Runner) Compile() ([]*compiler.FileSet, error) {
	m, err := r.load()
	if err != nil {
		return nil, err
	}
	return compiler.CompileAll(m, r.getFqdn())
}

// Performs the convergence run. All daemons are compiled before any file
// is written, so an invalid configuration of one daemon leaves the files
// of all daemons untouched. The daemons are converged in order. The run
// stops at the first daemon whose files cannot be written or are rejected
// by the syntax check.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	runResult := RunResultFailure
	defer func() {
		r.metrics.Runs.WithLabelValues(runResult).Inc()
		r.metrics.LastRunTimestamp.Set(float64(started.Unix()))
		r.metrics.LastRunDuration.Set(time.Since(started).Seconds())
		if runResult == RunResultSuccess {
			r.metrics.LastRunSuccess.Set(1)
		} else {
			r.metrics.LastRunSuccess.Set(0)
		}
		if r.settings.MetricsFile != "" {
			if metricsErr := r.metrics.WriteToTextfile(r.settings.MetricsFile); metricsErr != nil {
				log.WithError(metricsErr).Error("Cannot write the metrics")
			}
		}
	}()

	fileSets, err := r.Compile()
	if err != nil {
		var configErr *compiler.ConfigError
		if errors.As(err, &configErr) {
			runResult = RunResultInvalid
		}
		return nil, err
	}

	result := &Result{}
	for _, fileSet := range fileSets {
		daemonResult, err := r.converge(ctx, fileSet)
		if daemonResult != nil {
			result.Daemons = append(result.Daemons, daemonResult)
			r.metrics.observeDaemon(daemonResult)
		}
		if err != nil {
			var checkErr *SyntaxCheckError
			if errors.As(err, &checkErr) {
				runResult = RunResultCheckFailed
			}
			return result, err
		}
	}
	runResult = RunResultSuccess

	log.WithFields(log.Fields{
		"daemons": len(result.Daemons),
		"changes": result.GetChangeCount(),
	}).Info("Convergence completed")
	return result, nil
}

// Content of the file before the convergence. Nil content means that the
// file didn't exist.
type backup struct {
	path    string
	content []byte
}

// Writes the files of a single daemon, checks them and asks the daemon to
// reload.
func (r *Runner) converge(ctx context.Context, fileSet *compiler.FileSet) (*DaemonResult, error) {
	result := &DaemonResult{
		Daemon: fileSet.Protocol,
	}
	logger := log.WithField("daemon", fileSet.Protocol)

	for _, directory := range fileSet.GetManagedDirectories() {
		if _, err := r.fileManager.EnsureDirectory(directory); err != nil {
			return result, err
		}
	}

	var backups []backup
	for _, file := range fileSet.GetFiles() {
		previous, err := r.fileManager.Read(file.Path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return result, err
		}
		written, err := r.fileManager.WriteIfChanged(file.Path, file.Content)
		if err != nil {
			r.restore(backups)
			return result, err
		}
		if written {
			backups = append(backups, backup{path: file.Path, content: previous})
			result.Written = append(result.Written, file.Path)
			logger.WithField("path", file.Path).Info("Written configuration file")
		}
	}

	if r.settings.Check && len(result.Written) > 0 {
		if err := r.check(ctx, fileSet); err != nil {
			r.restore(backups)
			result.Written = nil
			return result, err
		}
		result.Checked = true
	}

	if r.settings.BackupDir != "" {
		path, err := r.backup(fileSet, backups)
		if err != nil {
			r.restore(backups)
			result.Written = nil
			return result, err
		}
		result.Backup = path
	}

	for _, directory := range fileSet.GetManagedDirectories() {
		removed, err := r.fileManager.PurgeDirectory(directory, fileSet.GetFilesInDirectory(directory))
		result.Removed = append(result.Removed, removed...)
		for _, path := range removed {
			logger.WithField("path", path).Info("Removed stale configuration file")
		}
		if err != nil {
			return result, err
		}
	}

	if r.settings.Reload && result.IsChanged() {
		err := r.reload(ctx, fileSet)
		r.metrics.observeReload(fileSet.Protocol, err)
		if err != nil {
			return result, err
		}
		result.Reloaded = true
	}
	return result, nil
}

// Runs the daemon binary with the -t switch to check the main file.
func (r *Runner) check(ctx context.Context, fileSet *compiler.FileSet) error {
	binary, err := r.executor.LookPath(fileSet.Protocol.Binary())
	if err != nil {
		return errors.Wrapf(err, "cannot find the %s binary to check the configuration", fileSet.Protocol.Binary())
	}
	output, err := r.executor.CombinedOutput(ctx, binary, "-t", fileSet.MainFile)
	if err != nil {
		return &SyntaxCheckError{
			Daemon: fileSet.Protocol,
			File:   fileSet.MainFile,
			Output: string(output),
			Err:    err,
		}
	}
	log.WithFields(log.Fields{
		"daemon": fileSet.Protocol,
		"file":   fileSet.MainFile,
	}).Debug("Configuration syntax check passed")
	return nil
}

// Restores the files written during the failed convergence. The files
// that didn't exist before are removed.
func (r *Runner) restore(backups []backup) {
	for i := len(backups) - 1; i >= 0; i-- {
		var err error
		if backups[i].content == nil {
			err = r.fileManager.RemoveIfExist(backups[i].path)
		} else {
			_, err = r.fileManager.WriteIfChanged(backups[i].path, backups[i].content)
		}
		if err != nil {
			log.WithError(err).WithField("path", backups[i].path).Error("Cannot restore the configuration file")
		}
	}
}

// Archives the previous content of the replaced files and the stale files
// in the managed directories. The files that didn't exist before are not
// archived. It returns an empty path if there is nothing to archive.
func (r *Runner) backup(fileSet *compiler.FileSet, backups []backup) (string, error) {
	for _, directory := range fileSet.GetManagedDirectories() {
		stale, err := r.fileManager.ListStaleFiles(directory, fileSet.GetFilesInDirectory(directory))
		if err != nil {
			return "", err
		}
		for _, path := range stale {
			content, err := r.fileManager.Read(path)
			if err != nil {
				return "", err
			}
			backups = append(backups, backup{path: path, content: content})
		}
	}

	var buffer bytes.Buffer
	writer := keautil.NewTarballWriter(&buffer)
	now := keautil.UTCNow()
	count := 0
	for _, b := range backups {
		if b.content == nil {
			continue
		}
		if err := writer.AddContent(strings.TrimPrefix(b.path, "/"), b.content, now); err != nil {
			_ = writer.Close()
			return "", err
		}
		count++
	}
	if err := writer.Close(); err != nil {
		return "", err
	}
	if count == 0 {
		return "", nil
	}

	path := filepath.Join(r.settings.BackupDir,
		fmt.Sprintf("%s-%s.tar.gz", fileSet.Protocol, now.Format("20060102T150405.000000000Z")))
	if _, err := r.fileManager.WriteIfChanged(path, buffer.Bytes()); err != nil {
		return "", errors.WithMessage(err, "cannot write the backup")
	}
	log.WithFields(log.Fields{
		"daemon": fileSet.Protocol,
		"path":   path,
		"files":  count,
	}).Info("Archived the previous configuration files")
	return path, nil
}

// Asks the daemon to reload the configuration from the written files.
func (r *Runner) reload(ctx context.Context, fileSet *compiler.FileSet) error {
	client, err := r.clientFactory(fileSet.ControlSocket)
	if err != nil {
		return errors.WithMessagef(err, "cannot reload the %s configuration", fileSet.Protocol)
	}
	if err = keactrl.NewController(client, "").ConfigReload(ctx); err != nil {
		return errors.WithMessagef(err, "cannot reload the %s configuration", fileSet.Protocol)
	}
	log.WithField("daemon", fileSet.Protocol).Info("Configuration reloaded")
	return nil
}
