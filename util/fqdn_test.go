package keautil

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// Test that the absolute name loses the terminating dot.
func TestNormalizeAbsoluteFqdn(t *testing.T) {
	fqdn, absolute, err := NormalizeFqdn(" foo.example.org. ")
	require.NoError(t, err)
	require.True(t, absolute)
	require.Equal(t, "foo.example.org", fqdn)
}

func TestNormalizeRelativeFqdn(t *testing.T) {
	fqdn, absolute, err := NormalizeFqdn("server1.exa-mple")
	require.NoError(t, err)
	require.False(t, absolute)
	require.Equal(t, "server1.exa-mple", fqdn)
}

// Test that the malformed names are rejected.
func TestNormalizeInvalidFqdn(t *testing.T) {
	for _, name := range []string{
		"",
		"foo..example.org",
		"foo.",
		"foo-.example.org.",
		"foo.example.or-g.",
		"foo.example.o.",
		"-foo.example.org.",
		"foo.exa&ple.org.",
		"foo. example.org.",
	} {
		fqdn, _, err := NormalizeFqdn(name)
		require.Error(t, err, name)
		require.Empty(t, fqdn, name)
	}
}

// Test that the local FQDN is returned without the trailing dot.
func TestLocalFqdn(t *testing.T) {
	// Arrange
	original := fqdnHostname
	defer func() { fqdnHostname = original }()
	fqdnHostname = func() (string, error) {
		return "server2.example.com.", nil
	}

	// Act
	fqdn, err := LocalFqdn()

	// Assert
	require.NoError(t, err)
	require.Equal(t, "server2.example.com", fqdn)
}

// Test that the lookup error is propagated.
func TestLocalFqdnLookupError(t *testing.T) {
	// Arrange
	original := fqdnHostname
	defer func() { fqdnHostname = original }()
	fqdnHostname = func() (string, error) {
		return "", errors.New("no resolver")
	}

	// Act
	fqdn, err := LocalFqdn()

	// Assert
	require.ErrorContains(t, err, "no resolver")
	require.Empty(t, fqdn)
}

// Test that an invalid local name is rejected.
func TestLocalFqdnInvalid(t *testing.T) {
	// Arrange
	original := fqdnHostname
	defer func() { fqdnHostname = original }()
	fqdnHostname = func() (string, error) {
		return "bad_name.example.com", nil
	}

	// Act
	_, err := LocalFqdn()

	// Assert
	require.ErrorContains(t, err, "not a valid FQDN")
}
