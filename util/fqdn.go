package keautil

import (
	"regexp"
	"strings"

	goFqdn "github.com/Showmax/go-fqdn"
	"github.com/pkg/errors"
)

var (
	hostLabelPattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)
	tldLabelPattern  = regexp.MustCompile(`^[A-Za-z]{2,63}$`)
)

// Resolves the host name of the local machine. Replaced in the unit tests.
var fqdnHostname = goFqdn.FqdnHostname //nolint:gochecknoglobals

// Validates the host name and returns it without the terminating dot. A
// name with the terminating dot is absolute and must have at least three
// labels with an alphabetic top-level label. Other names are relative.
func NormalizeFqdn(name string) (normalized string, absolute bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false, errors.New("the FQDN is empty")
	}
	absolute = strings.HasSuffix(name, ".")
	labels := strings.Split(strings.TrimSuffix(name, "."), ".")
	if absolute && len(labels) < 3 {
		return "", false, errors.Errorf("absolute FQDN %s must have at least three labels", name)
	}
	for i, label := range labels {
		if !hostLabelPattern.MatchString(label) {
			return "", false, errors.Errorf("label '%s' of %s must consist of letters, digits and inner hyphens", label, name)
		}
		if absolute && i == len(labels)-1 && !tldLabelPattern.MatchString(label) {
			return "", false, errors.Errorf("top-level label of %s must consist of at least two letters", name)
		}
	}
	return strings.Join(labels, "."), absolute, nil
}

// Returns the FQDN of the local host without the terminating dot. It is
// the default name of this server in the HA relationship.
func LocalFqdn() (string, error) {
	hostname, err := fqdnHostname()
	if err != nil {
		return "", errors.Wrap(err, "cannot determine the FQDN of the local host")
	}
	fqdn, _, err := NormalizeFqdn(hostname)
	if err != nil {
		return "", errors.WithMessage(err, "local host name is not a valid FQDN")
	}
	return fqdn, nil
}
