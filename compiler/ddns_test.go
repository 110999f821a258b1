package compiler_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	keaconfig "isc.org/keaconverge/appcfg/kea"
	"isc.org/keaconverge/compiler"
	"isc.org/keaconverge/datamodel/daemonname"
)

// Decodes the rendered DHCP-DDNS configuration.
func decodeD2(t *testing.T, fileSet *compiler.FileSet) keaconfig.D2Config {
	t.Helper()
	content, ok := fileSet.Get(fileSet.MainFile)
	require.True(t, ok)
	var document struct {
		DhcpDdns keaconfig.D2Config
	}
	require.NoError(t, json.Unmarshal(content, &document))
	return document.DhcpDdns
}

// Test that the DHCP-DDNS configuration is rendered with the defaults.
func TestCompileDDNSDefaults(t *testing.T) {
	// Arrange
	m := parseManifest(t, "ddns:\n  enable: true\n")

	// Act
	fileSet, err := compiler.Compile(daemonname.D2, m, "")

	// Assert
	require.NoError(t, err)
	require.Equal(t, []string{"/etc/kea/kea-dhcp-ddns.conf"}, fileSet.GetPaths())
	require.Empty(t, fileSet.GetManagedDirectories())

	d2 := decodeD2(t, fileSet)
	require.Equal(t, "127.0.0.1", d2.IPAddress)
	require.EqualValues(t, 53001, d2.Port)
	require.EqualValues(t, 500, d2.DNSServerTimeout)
	require.Empty(t, d2.TSIGKeys)
	require.NotNil(t, d2.TSIGKeys)
	require.Empty(t, d2.ForwardDDNS)
	require.Empty(t, d2.ReverseDDNS)
	require.NotNil(t, d2.ControlSocket)
	require.Equal(t, "/var/run/kea/kea-ddns-ctrl.sock", d2.ControlSocket.GetAddress())
	require.Len(t, d2.Loggers, 1)
	require.Equal(t, "kea-dhcp-ddns", d2.Loggers[0].Name)
	require.Equal(t, "/var/log/kea/kea-dhcp-ddns.log", d2.Loggers[0].GetAllOutputOptions()[0].Output)
}

// Test that the DDNS trees are translated to the Kea parameter names.
func TestCompileDDNSTranslation(t *testing.T) {
	// Arrange
	m := parseManifest(t, `
ddns:
  enable: true
  dns_server_timeout: 1000
  forward_ddns:
    ddns_domains:
      - name: example.com.
        key_name: ddns-key
        dns_servers:
          - ip_address: 192.168.1.1
            port: 53
  reverse_ddns:
    ddns_domains:
      - name: 1.168.192.in-addr.arpa.
        dns_servers:
          - ip_address: 192.168.1.1
  tsig_keys:
    - name: ddns-key
      algorithm: HMAC-SHA256
      secret: LSWXnfkKZjdPJI5QxlpnfQ==
    - name: file-key
      algorithm: hmac-sha512
      digest_bits: 256
      secret_file: /etc/kea/file-key.secret
`)

	// Act
	fileSet, err := compiler.Compile(daemonname.D2, m, "")

	// Assert
	require.NoError(t, err)
	d2 := decodeD2(t, fileSet)
	require.EqualValues(t, 1000, d2.DNSServerTimeout)
	require.Equal(t, map[string]any{
		"ddns-domains": []any{
			map[string]any{
				"name":     "example.com.",
				"key-name": "ddns-key",
				"dns-servers": []any{
					map[string]any{
						"ip-address": "192.168.1.1",
						"port":       float64(53),
					},
				},
			},
		},
	}, d2.ForwardDDNS)
	require.Equal(t, map[string]any{
		"ddns-domains": []any{
			map[string]any{
				"name": "1.168.192.in-addr.arpa.",
				"dns-servers": []any{
					map[string]any{
						"ip-address": "192.168.1.1",
					},
				},
			},
		},
	}, d2.ReverseDDNS)
	require.Equal(t, []any{
		map[string]any{
			"name":      "ddns-key",
			"algorithm": "HMAC-SHA256",
			"secret":    "LSWXnfkKZjdPJI5QxlpnfQ==",
		},
		map[string]any{
			"name":        "file-key",
			"algorithm":   "hmac-sha512",
			"digest-bits": float64(256),
			"secret-file": "/etc/kea/file-key.secret",
		},
	}, d2.TSIGKeys)

	content, _ := fileSet.Get(fileSet.MainFile)
	require.Contains(t, string(content), `"dns-server-timeout": 1000`)
	require.NotContains(t, string(content), "ddns_domains")
}

// Test the DDNS parameter name table.
func TestTranslateDDNSKey(t *testing.T) {
	for key, expected := range map[string]string{
		"dns_servers":  "dns-servers",
		"ip_address":   "ip-address",
		"key_name":     "key-name",
		"ddns_domains": "ddns-domains",
		"digest_bits":  "digest-bits",
		"secret_file":  "secret-file",
		"name":         "name",
		"port":         "port",
		"algorithm":    "algorithm",
		"secret":       "secret",
	} {
		translated, ok := compiler.TranslateDDNSKey(key)
		require.True(t, ok, key)
		require.Equal(t, expected, translated)
	}

	_, ok := compiler.TranslateDDNSKey("dns-servers")
	require.False(t, ok)
}

// Test that the unknown DDNS parameters are rejected.
func TestCompileDDNSUnknownKey(t *testing.T) {
	// Arrange
	m := parseManifest(t, `
ddns:
  enable: true
  forward_ddns:
    ddns_domains:
      - name: example.com.
        dns_servers:
          - ip_address: 192.168.1.1
            dns_port: 53
`)

	// Act
	fileSet, err := compiler.Compile(daemonname.D2, m, "")

	// Assert
	require.Nil(t, fileSet)
	require.True(t, compiler.IsKind(err, compiler.UnknownDDNSKey))
	require.ErrorContains(t, err, "forward_ddns.ddns_domains[0].dns_servers[0]")
	var configErr *compiler.ConfigError
	require.ErrorAs(t, err, &configErr)
	require.Equal(t, "dns_port", configErr.Subject)
}

// Test that the invalid DDNS domain names are rejected.
func TestCompileDDNSInvalidDomainName(t *testing.T) {
	// Arrange
	m := parseManifest(t, `
ddns:
  reverse_ddns:
    ddns_domains:
      - name: "bad..example.com"
`)

	// Act
	_, err := compiler.Compile(daemonname.D2, m, "")

	// Assert
	require.True(t, compiler.IsKind(err, compiler.InvalidDomainName))
}

// Test that the DDNS domains and their DNS servers must be mappings.
func TestCompileDDNSDomainNotMapping(t *testing.T) {
	for subject, content := range map[string]string{
		"forward_ddns.ddns_domains[1]": `
ddns:
  forward_ddns:
    ddns_domains:
      - name: example.com.
      - 42
`,
		"reverse_ddns.ddns_domains[0].dns_servers[0]": `
ddns:
  reverse_ddns:
    ddns_domains:
      - name: 2.0.192.in-addr.arpa.
        dns_servers:
          - 192.0.2.53
`,
		"forward_ddns.ddns_domains": `
ddns:
  forward_ddns:
    ddns_domains: example.com.
`,
	} {
		t.Run(subject, func(t *testing.T) {
			// Arrange
			m := parseManifest(t, content)

			// Act
			fileSet, err := compiler.Compile(daemonname.D2, m, "")

			// Assert
			require.Nil(t, fileSet)
			require.True(t, compiler.IsKind(err, compiler.InvalidDomainName))
			var configErr *compiler.ConfigError
			require.ErrorAs(t, err, &configErr)
			require.Equal(t, subject, configErr.Subject)
		})
	}
}

// Test that the invalid TSIG keys are rejected.
func TestCompileDDNSInvalidTSIGKey(t *testing.T) {
	testCases := map[string]string{
		"unknown algorithm": `
ddns:
  tsig_keys:
    - name: key
      algorithm: HMAC-SHA3
      secret: c2VjcmV0
`,
		"invalid secret": `
ddns:
  tsig_keys:
    - name: key
      algorithm: HMAC-SHA256
      secret: base64encodedkey==
`,
		"missing secret": `
ddns:
  tsig_keys:
    - name: key
      algorithm: HMAC-SHA256
`,
		"both secret and secret file": `
ddns:
  tsig_keys:
    - name: key
      algorithm: HMAC-SHA256
      secret: c2VjcmV0
      secret_file: /etc/kea/key.secret
`,
		"duplicated key": `
ddns:
  tsig_keys:
    - name: key
      algorithm: HMAC-SHA256
      secret: c2VjcmV0
    - name: key
      algorithm: HMAC-SHA256
      secret: c2VjcmV0
`,
		"unknown key reference": `
ddns:
  tsig_keys:
    - name: key
      algorithm: HMAC-SHA256
      secret: c2VjcmV0
  forward_ddns:
    ddns_domains:
      - name: example.com.
        key_name: other
`,
		"unknown server key reference": `
ddns:
  forward_ddns:
    ddns_domains:
      - name: example.com.
        dns_servers:
          - ip_address: 192.0.2.53
            key_name: other
`,
	}

	for name, content := range testCases {
		t.Run(name, func(t *testing.T) {
			// Arrange
			m := parseManifest(t, content)

			// Act
			_, err := compiler.Compile(daemonname.D2, m, "")

			// Assert
			require.True(t, compiler.IsKind(err, compiler.InvalidTSIGKey), err)
		})
	}
}

// Test that the DHCP-DDNS listener and hook libraries can be customized.
func TestCompileDDNSCustomListener(t *testing.T) {
	// Arrange
	m := parseManifest(t, `
run_dir: /run/kea
ddns:
  ip_address: 192.0.2.1
  port: 53002
  ncr_protocol: UDP
  ncr_format: JSON
  hooks_libraries:
    - library: /usr/lib/kea/hooks/libddns_gss_tsig.so
`)

	// Act
	fileSet, err := compiler.Compile(daemonname.D2, m, "")

	// Assert
	require.NoError(t, err)
	d2 := decodeD2(t, fileSet)
	require.Equal(t, "192.0.2.1", d2.IPAddress)
	require.EqualValues(t, 53002, d2.Port)
	require.Equal(t, "UDP", *d2.NCRProtocol)
	require.Equal(t, "JSON", *d2.NCRFormat)
	require.Equal(t, 0, d2.GetHookLibraries().IndexOf("libddns_gss_tsig"))
	require.Equal(t, "/run/kea/kea-ddns-ctrl.sock", *d2.ControlSocket.SocketName)
}
