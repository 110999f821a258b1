package compiler

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/miekg/dns"
	keaconfig "isc.org/keaconverge/appcfg/kea"
	"isc.org/keaconverge/datamodel/daemonname"
	"isc.org/keaconverge/manifest"
	keautil "isc.org/keaconverge/util"
)

// Translation of the DDNS parameter names from the manifest to Kea. The
// same table applies at all nesting levels of the forward DDNS, reverse
// DDNS and TSIG keys trees. The keys out of the table are rejected.
var ddnsKeyTable = map[string]string{ //nolint:gochecknoglobals
	"ddns_domains": "ddns-domains",
	"dns_servers":  "dns-servers",
	"ip_address":   "ip-address",
	"key_name":     "key-name",
	"digest_bits":  "digest-bits",
	"secret_file":  "secret-file",
	"name":         "name",
	"port":         "port",
	"algorithm":    "algorithm",
	"secret":       "secret",
}

// TSIG algorithms supported by Kea mapped to the algorithm names used by
// the DNS library.
var tsigAlgorithms = map[string]string{ //nolint:gochecknoglobals
	"HMAC-MD5":    dns.HmacMD5,
	"HMAC-SHA1":   dns.HmacSHA1,
	"HMAC-SHA224": dns.HmacSHA224,
	"HMAC-SHA256": dns.HmacSHA256,
	"HMAC-SHA384": dns.HmacSHA384,
	"HMAC-SHA512": dns.HmacSHA512,
}

// Returns the Kea name of the DDNS parameter.
func TranslateDDNSKey(key string) (string, bool) {
	translated, ok := ddnsKeyTable[key]
	return translated, ok
}

// Translates the parameter names in the generic DDNS tree. The location
// is the path of the tree used in the error messages.
func translateDDNSTree(value any, location string) (any, error) {
	switch typed := normalize(value).(type) {
	case map[string]any:
		translated := make(map[string]any, len(typed))
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			keaKey, ok := TranslateDDNSKey(key)
			if !ok {
				return nil, newConfigError(UnknownDDNSKey, daemonname.D2, key,
					"unknown DDNS parameter '%s' in %s", key, location)
			}
			nested, err := translateDDNSTree(typed[key], location+"."+key)
			if err != nil {
				return nil, err
			}
			translated[keaKey] = nested
		}
		return translated, nil
	case []any:
		translated := make([]any, 0, len(typed))
		for i, item := range typed {
			nested, err := translateDDNSTree(item, fmt.Sprintf("%s[%d]", location, i))
			if err != nil {
				return nil, err
			}
			translated = append(translated, nested)
		}
		return translated, nil
	default:
		return typed, nil
	}
}

// Compiles the DHCP-DDNS daemon configuration.
type ddnsCompiler struct {
	manifest    *manifest.Manifest
	config      *manifest.DDNSConfig
	layout      Layout
	forwardDDNS map[string]any
	reverseDDNS map[string]any
	tsigKeys    []any
}

// Translates and validates the DDNS trees. The translated trees are kept
// for rendering.
func (c *ddnsCompiler) validate() error {
	forward, err := translateDDNSTree(c.config.ForwardDDNS, "forward_ddns")
	if err != nil {
		return err
	}
	reverse, err := translateDDNSTree(c.config.ReverseDDNS, "reverse_ddns")
	if err != nil {
		return err
	}
	keys, err := translateDDNSTree(c.config.TSIGKeys, "tsig_keys")
	if err != nil {
		return err
	}
	c.forwardDDNS, _ = forward.(map[string]any)
	c.reverseDDNS, _ = reverse.(map[string]any)
	c.tsigKeys, _ = keys.([]any)

	keyNames, err := validateTSIGKeys(c.tsigKeys)
	if err != nil {
		return err
	}
	if err := validateDDNSDomains("forward_ddns", c.forwardDDNS, keyNames); err != nil {
		return err
	}
	return validateDDNSDomains("reverse_ddns", c.reverseDDNS, keyNames)
}

// Returns the string value of the parameter.
func getString(entry map[string]any, key string) (string, bool) {
	value, ok := entry[key].(string)
	return value, ok
}

// Validates the TSIG keys and returns their names.
func validateTSIGKeys(keys []any) (map[string]bool, error) {
	names := make(map[string]bool)
	for i, item := range keys {
		key, ok := item.(map[string]any)
		if !ok {
			return nil, newConfigError(InvalidTSIGKey, daemonname.D2, fmt.Sprintf("tsig_keys[%d]", i),
				"TSIG key %d must be a mapping", i)
		}
		name, _ := getString(key, "name")
		if name == "" || !isDomainName(name) {
			return nil, newConfigError(InvalidTSIGKey, daemonname.D2, name,
				"TSIG key name '%s' is not a valid domain name", name)
		}
		if names[name] {
			return nil, newConfigError(InvalidTSIGKey, daemonname.D2, name,
				"TSIG key '%s' is defined more than once", name)
		}
		algorithm, _ := getString(key, "algorithm")
		if _, ok := tsigAlgorithms[strings.ToUpper(algorithm)]; !ok {
			return nil, newConfigError(InvalidTSIGKey, daemonname.D2, name,
				"TSIG key '%s' has an unsupported algorithm '%s'", name, algorithm)
		}
		secret, hasSecret := getString(key, "secret")
		_, hasSecretFile := getString(key, "secret-file")
		switch {
		case hasSecret && hasSecretFile:
			return nil, newConfigError(InvalidTSIGKey, daemonname.D2, name,
				"TSIG key '%s' must not specify both the secret and the secret file", name)
		case hasSecret:
			if _, err := base64.StdEncoding.DecodeString(secret); err != nil || secret == "" {
				return nil, newConfigError(InvalidTSIGKey, daemonname.D2, name,
					"TSIG key '%s' secret is not a valid base64 string", name)
			}
		case !hasSecretFile:
			return nil, newConfigError(InvalidTSIGKey, daemonname.D2, name,
				"TSIG key '%s' must specify the secret or the secret file", name)
		}
		names[name] = true
	}
	return names, nil
}

// Validates the DDNS domain names and the TSIG key references in the
// forward or reverse DDNS tree. The domains and their servers must be
// mappings.
func validateDDNSDomains(location string, tree map[string]any, keyNames map[string]bool) error {
	domains, ok := tree["ddns-domains"].([]any)
	if !ok && tree["ddns-domains"] != nil {
		subject := location + ".ddns_domains"
		return newConfigError(InvalidDomainName, daemonname.D2, subject, "%s must be a list", subject)
	}
	for i, item := range domains {
		subject := fmt.Sprintf("%s.ddns_domains[%d]", location, i)
		domain, ok := item.(map[string]any)
		if !ok {
			return newConfigError(InvalidDomainName, daemonname.D2, subject,
				"%s must be a mapping with the domain name", subject)
		}
		name, _ := getString(domain, "name")
		if !isDomainName(name) {
			return newConfigError(InvalidDomainName, daemonname.D2, name,
				"DDNS domain name '%s' is invalid", name)
		}
		if keyName, ok := getString(domain, "key-name"); ok && !keyNames[keyName] {
			return newConfigError(InvalidTSIGKey, daemonname.D2, keyName,
				"DDNS domain '%s' refers to an unknown TSIG key '%s'", name, keyName)
		}
		servers, ok := domain["dns-servers"].([]any)
		if !ok && domain["dns-servers"] != nil {
			return newConfigError(InvalidDomainName, daemonname.D2, subject+".dns_servers",
				"DNS servers of the DDNS domain '%s' must be a list", name)
		}
		for j, serverItem := range servers {
			server, ok := serverItem.(map[string]any)
			if !ok {
				serverSubject := fmt.Sprintf("%s.dns_servers[%d]", subject, j)
				return newConfigError(InvalidDomainName, daemonname.D2, serverSubject,
					"%s must be a mapping with the server address", serverSubject)
			}
			if keyName, ok := getString(server, "key-name"); ok && !keyNames[keyName] {
				return newConfigError(InvalidTSIGKey, daemonname.D2, keyName,
					"DNS server in the DDNS domain '%s' refers to an unknown TSIG key '%s'", name, keyName)
			}
		}
	}
	return nil
}

// Checks if the name is a valid domain name.
func isDomainName(name string) bool {
	if name == "" {
		return false
	}
	_, ok := dns.IsDomainName(name)
	return ok
}

// Renders the DHCP-DDNS configuration file. The configuration must be
// validated first.
func (c *ddnsCompiler) render() (*FileSet, error) {
	fileSet := newFileSet(daemonname.D2, c.layout.MainFile)
	fileSet.ControlSocket = renderControlSocket(daemonname.D2, c.config.ControlSocket, c.manifest.RunDir)

	forwardDDNS := c.forwardDDNS
	if forwardDDNS == nil {
		forwardDDNS = map[string]any{}
	}
	reverseDDNS := c.reverseDDNS
	if reverseDDNS == nil {
		reverseDDNS = map[string]any{}
	}
	tsigKeys := c.tsigKeys
	if tsigKeys == nil {
		tsigKeys = []any{}
	}

	hooks, err := renderHookLibraries(c.config.HooksLibraries)
	if err != nil {
		return nil, err
	}

	document := keaconfig.Document{
		D2: &keaconfig.D2Config{
			IPAddress:        keautil.ValueOr(c.config.IPAddress, manifest.DefaultDDNSIPAddress),
			Port:             keautil.ValueOr(c.config.Port, manifest.DefaultDDNSPort),
			DNSServerTimeout: keautil.ValueOr(c.config.DNSServerTimeout, manifest.DefaultDNSServerTimeout),
			NCRProtocol:      c.config.NCRProtocol,
			NCRFormat:        c.config.NCRFormat,
			ControlSocket:    fileSet.ControlSocket,
			TSIGKeys:         tsigKeys,
			ForwardDDNS:      forwardDDNS,
			ReverseDDNS:      reverseDDNS,
			HookLibraries:    hooks,
			Loggers:          renderLoggers(daemonname.D2, c.config.Logging, c.manifest.LogDir),
		},
	}
	content, err := keaconfig.Marshal(document)
	if err != nil {
		return nil, err
	}
	fileSet.add(c.layout.MainFile, content)
	return fileSet, nil
}
