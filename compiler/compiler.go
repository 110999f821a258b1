package compiler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"isc.org/keaconverge/datamodel/daemonname"
	"isc.org/keaconverge/manifest"
)

// Locations of the files rendered for a daemon. The subnet and shared
// network locations are empty for the DHCP-DDNS daemon.
type Layout struct {
	MainFile               string
	SubnetList             string
	SubnetDirectory        string
	SharedNetworkList      string
	SharedNetworkDirectory string
}

// Returns the file layout of the daemon in the given configuration
// directory, e.g., for DHCPv4:
//
//	/etc/kea/kea-dhcp4.conf
//	/etc/kea/kea-dhcp4-subnets.json
//	/etc/kea/subnets4.d/
//	/etc/kea/kea-dhcp4-shared-networks.json
//	/etc/kea/shared-networks4.d/
func NewLayout(protocol daemonname.Name, configDir string) Layout {
	layout := Layout{
		MainFile: filepath.Join(configDir, protocol.ConfigFileName()),
	}
	if protocol.IsDHCP() {
		universe := protocol.Universe()
		binary := protocol.Binary()
		layout.SubnetList = filepath.Join(configDir, binary+"-subnets.json")
		layout.SubnetDirectory = filepath.Join(configDir, fmt.Sprintf("subnets%d.d", universe))
		layout.SharedNetworkList = filepath.Join(configDir, binary+"-shared-networks.json")
		layout.SharedNetworkDirectory = filepath.Join(configDir, fmt.Sprintf("shared-networks%d.d", universe))
	}
	return layout
}

// Returns the path of the subnet file with the given stem.
func (l Layout) SubnetFile(stem string) string {
	return filepath.Join(l.SubnetDirectory, stem+".json")
}

// Returns the path of the shared network file with the given stem.
func (l Layout) SharedNetworkFile(stem string) string {
	return filepath.Join(l.SharedNetworkDirectory, stem+".json")
}

func parentDirectory(path string) string {
	return filepath.Dir(path)
}

// Checks that the path can be embedded in the include directive.
func validateIncludePath(protocol daemonname.Name, path string) error {
	if strings.ContainsAny(path, "\"\\\n") {
		return newConfigError(InvalidIncludePath, protocol, path,
			"path %q cannot be used in the include directive", path)
	}
	return nil
}

// Compiles the manifest into the set of configuration files of the given
// daemon. The local FQDN is the default HA this_server name. The manifest
// is validated first and no files are rendered if it is invalid. The
// returned errors are of the ConfigError type unless the rendering itself
// fails.
func Compile(protocol daemonname.Name, m *manifest.Manifest, localFqdn string) (*FileSet, error) {
	var (
		fileSet *FileSet
		err     error
	)
	switch protocol {
	case daemonname.DHCPv4, daemonname.DHCPv6:
		config := m.DHCPv4
		if protocol == daemonname.DHCPv6 {
			config = m.DHCPv6
		}
		if config == nil {
			config = &manifest.DHCPConfig{}
		}
		compiler := &dhcpCompiler{
			protocol:       protocol,
			manifest:       m,
			config:         config,
			sharedNetworks: m.SharedNetworks.Get(protocol),
			layout:         NewLayout(protocol, m.ConfigDir),
			localFqdn:      localFqdn,
		}
		if err = compiler.validate(); err != nil {
			return nil, err
		}
		fileSet, err = compiler.render()
	case daemonname.D2:
		config := m.DDNS
		if config == nil {
			config = &manifest.DDNSConfig{}
		}
		compiler := &ddnsCompiler{
			manifest: m,
			config:   config,
			layout:   NewLayout(protocol, m.ConfigDir),
		}
		if err = compiler.validate(); err != nil {
			return nil, err
		}
		fileSet, err = compiler.render()
	default:
		return nil, errors.Errorf("unsupported daemon %s", protocol)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "cannot render the %s configuration", protocol)
	}

	log.WithFields(log.Fields{
		"daemon": protocol,
		"files":  fileSet.Len(),
		"digest": fileSet.Digest(),
	}).Debug("Compiled the configuration")
	return fileSet, nil
}

// Returns the daemons enabled in the manifest in the processing order.
func GetEnabledDaemons(m *manifest.Manifest) []daemonname.Name {
	var daemons []daemonname.Name
	for _, daemon := range daemonname.All() {
		switch daemon {
		case daemonname.DHCPv4:
			if m.DHCPv4 != nil && m.DHCPv4.Enable {
				daemons = append(daemons, daemon)
			}
		case daemonname.DHCPv6:
			if m.DHCPv6 != nil && m.DHCPv6.Enable {
				daemons = append(daemons, daemon)
			}
		case daemonname.D2:
			if m.DDNS != nil && m.DDNS.Enable {
				daemons = append(daemons, daemon)
			}
		}
	}
	return daemons
}

// Compiles the configurations of all enabled daemons. It returns no file
// sets if any of the configurations is invalid.
func CompileAll(m *manifest.Manifest, localFqdn string) ([]*FileSet, error) {
	var fileSets []*FileSet
	for _, daemon := range GetEnabledDaemons(m) {
		fileSet, err := Compile(daemon, m, localFqdn)
		if err != nil {
			return nil, err
		}
		fileSets = append(fileSets, fileSet)
	}
	return fileSets, nil
}
