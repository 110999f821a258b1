package manifest

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	keaconfig "isc.org/keaconverge/appcfg/kea"
	"isc.org/keaconverge/datamodel/daemonname"
)

// Shared networks supplied out-of-band, keyed by the protocol. The content
// of each shared network is passed to Kea verbatim.
type SharedNetworks struct {
	DHCPv4 []keaconfig.SharedNetwork `yaml:"dhcp4"`
	DHCPv6 []keaconfig.SharedNetwork `yaml:"dhcp6"`
}

// Returns the shared networks of the given protocol. It is safe to call
// on nil.
func (sn *SharedNetworks) Get(protocol daemonname.Name) []keaconfig.SharedNetwork {
	if sn == nil {
		return nil
	}
	switch protocol {
	case daemonname.DHCPv4:
		return sn.DHCPv4
	case daemonname.DHCPv6:
		return sn.DHCPv6
	default:
		return nil
	}
}

// Parses the shared networks data.
func ParseSharedNetworks(content []byte, asJSON bool) (*SharedNetworks, error) {
	sn := &SharedNetworks{}
	if err := decode(content, asJSON, sn); err != nil {
		return nil, errors.Wrap(err, "cannot parse the shared networks")
	}
	return sn, nil
}

// Reads and parses the shared networks data file.
func LoadSharedNetworks(path string) (*SharedNetworks, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read the shared networks file %s", path)
	}
	sn, err := ParseSharedNetworks(content, isJSON(path, content))
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid shared networks file %s", path)
	}
	log.WithFields(log.Fields{
		"path":  path,
		"dhcp4": len(sn.DHCPv4),
		"dhcp6": len(sn.DHCPv6),
	}).Debug("Loaded the shared networks")
	return sn, nil
}
