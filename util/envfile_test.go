package keautil

import (
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"isc.org/keaconverge/testutil"
)

// Test that loading a missing environment file causes an error.
func TestLoadMissingEnvironmentFile(t *testing.T) {
	// Arrange & Act
	sb := testutil.NewSandbox()
	defer sb.Close()
	data, err := loadEnvironmentFile(sb.Path("not-exists.env"))

	// Assert
	require.Error(t, err)
	require.Nil(t, data)
}

// Test that the multi-line environment file content is loaded properly.
func TestLoadMultiLineEnvironmentContent(t *testing.T) {
	// Arrange
	content := `KEA_CONVERGE_MANIFEST=/etc/kea-converge/manifest.yaml
				export KEA_CONVERGE_LOG_LEVEL=debug
				KEA_CONVERGE_FQDN = server1.example.com`

	// Act
	data, err := loadEnvironmentEntries(strings.NewReader(content))

	// Assert
	require.NoError(t, err)
	require.Len(t, data, 3)
	require.EqualValues(t, "KEA_CONVERGE_MANIFEST", data[0].key)
	require.EqualValues(t, "/etc/kea-converge/manifest.yaml", data[0].value)
	require.EqualValues(t, "KEA_CONVERGE_LOG_LEVEL", data[1].key)
	require.EqualValues(t, "debug", data[1].value)
	require.EqualValues(t, "KEA_CONVERGE_FQDN", data[2].key)
	require.EqualValues(t, "server1.example.com", data[2].value)
}

// Test that the quoted values are unquoted.
func TestLoadEnvironmentContentQuoted(t *testing.T) {
	// Arrange
	content := `KEY1="VALUE 1"
		KEY2='VALUE=2'
		KEY3="unbalanced'
		KEY4=""`

	// Act
	data, err := loadEnvironmentEntries(strings.NewReader(content))

	// Assert
	require.NoError(t, err)
	require.Len(t, data, 4)
	require.EqualValues(t, "VALUE 1", data[0].value)
	require.EqualValues(t, "VALUE=2", data[1].value)
	require.EqualValues(t, `"unbalanced'`, data[2].value)
	require.Empty(t, data[3].value)
}

// Test that the comments and empty lines are skipped.
func TestLoadEnvironmentContentWithComments(t *testing.T) {
	// Arrange
	content := `# KEY1=VALUE1

		KEY2=VALUE2
		  # KEY3=VALUE3`

	// Act
	data, err := loadEnvironmentEntries(strings.NewReader(content))

	// Assert
	require.NoError(t, err)
	require.Len(t, data, 1)
	require.EqualValues(t, "KEY2", data[0].key)
}

// Test that the invalid lines are reported with their index.
func TestLoadEnvironmentContentInvalid(t *testing.T) {
	t.Run("missing separator", func(t *testing.T) {
		data, err := loadEnvironmentEntries(strings.NewReader("KEY1=VALUE1\nKEY2/VALUE2"))
		require.ErrorContains(t, err, "invalid line 2")
		require.Nil(t, data)
	})

	t.Run("missing key", func(t *testing.T) {
		data, err := loadEnvironmentEntries(strings.NewReader("=VALUE"))
		require.ErrorContains(t, err, "key cannot be empty")
		require.Nil(t, data)
	})
}

type setterMock struct {
	err  error
	data map[string]string
}

func (s *setterMock) Set(key, value string) error {
	if s.err != nil {
		return s.err
	}
	s.data[key] = value
	return nil
}

// Test that the environment file is loaded into the setter.
func TestLoadEnvironmentFileToSetter(t *testing.T) {
	// Arrange
	sb := testutil.NewSandbox()
	defer sb.Close()
	path, _ := sb.Write("kea-converge.env", "KEY1=VALUE1\nKEY2=VALUE2\n")
	mock := &setterMock{data: map[string]string{}}

	// Act
	err := LoadEnvironmentFileToSetter(path, mock)

	// Assert
	require.NoError(t, err)
	require.Equal(t, map[string]string{"KEY1": "VALUE1", "KEY2": "VALUE2"}, mock.data)
}

// Test that the setter error is propagated.
func TestLoadEnvironmentFileToSetterError(t *testing.T) {
	// Arrange
	sb := testutil.NewSandbox()
	defer sb.Close()
	path, _ := sb.Write("kea-converge.env", "KEY1=VALUE1\n")
	mock := &setterMock{err: errors.New("foo")}

	// Act
	err := LoadEnvironmentFileToSetter(path, mock)

	// Assert
	require.ErrorContains(t, err, "cannot set value for key: 'KEY1': foo")
}

// Test that the process setter doesn't override the existing variables.
func TestProcessEnvironmentSetter(t *testing.T) {
	// Arrange
	restore := testutil.CreateEnvironmentRestorePoint()
	defer restore()
	os.Setenv("KEA_CONVERGE_TEST_EXISTING", "original")
	os.Unsetenv("KEA_CONVERGE_TEST_NEW")
	setter := ProcessEnvironmentSetter{}

	// Act
	err1 := setter.Set("KEA_CONVERGE_TEST_EXISTING", "override")
	err2 := setter.Set("KEA_CONVERGE_TEST_NEW", "new")

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.Equal(t, "original", os.Getenv("KEA_CONVERGE_TEST_EXISTING"))
	require.Equal(t, "new", os.Getenv("KEA_CONVERGE_TEST_NEW"))
}
