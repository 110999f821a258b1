package keautil_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	keautil "isc.org/keaconverge/util"
)

// Returns a read function serving the content from a map.
func readFromMap(files map[string]string) func(string) ([]byte, error) {
	return func(path string) ([]byte, error) {
		content, ok := files[path]
		if !ok {
			return nil, errors.Wrapf(os.ErrNotExist, "missing %s", path)
		}
		return []byte(content), nil
	}
}

// Test that the include directive is formatted as Kea expects.
func TestIncludeDirective(t *testing.T) {
	require.Equal(t, `<?include "/etc/kea/kea-dhcp4-subnets.json"?>`,
		keautil.IncludeDirective("/etc/kea/kea-dhcp4-subnets.json"))
}

// Test listing the included files.
func TestListIncludes(t *testing.T) {
	content := []byte(`[
<?include "/etc/kea/subnets4.d/a.json"?>,
<?include  "/etc/kea/subnets4.d/b.json" ?>
]`)
	require.Equal(t, []string{"/etc/kea/subnets4.d/a.json", "/etc/kea/subnets4.d/b.json"},
		keautil.ListIncludes(content))
	require.Empty(t, keautil.ListIncludes([]byte("{}")))
}

// Test that the file without includes is returned unchanged.
func TestResolveIncludesNone(t *testing.T) {
	files := map[string]string{"main": `{"foo": 42}`}

	resolved, err := keautil.ResolveIncludes("main", readFromMap(files))

	require.NoError(t, err)
	require.Equal(t, `{"foo": 42}`, string(resolved))
}

// Test that the nested includes are resolved.
func TestResolveIncludesNested(t *testing.T) {
	files := map[string]string{
		"main":    `{"subnet4": <?include "subnets"?>, "other": <?include "leaf"?>}`,
		"subnets": "[\n<?include \"leaf\"?>,\n<?include \"leaf\"?>\n]",
		"leaf":    `{"id": 1}`,
	}

	resolved, err := keautil.ResolveIncludes("main", readFromMap(files))

	require.NoError(t, err)
	var data map[string]any
	require.NoError(t, json.Unmarshal(resolved, &data))
	require.Len(t, data["subnet4"], 2)
	require.Equal(t, map[string]any{"id": float64(1)}, data["other"])
}

// Test that the include loop is detected.
func TestResolveIncludesLoop(t *testing.T) {
	files := map[string]string{
		"a": `{"b": <?include "b"?>}`,
		"b": `{"a": <?include "a"?>}`,
	}

	resolved, err := keautil.ResolveIncludes("a", readFromMap(files))

	require.ErrorContains(t, err, "include loop at a")
	require.Nil(t, resolved)
}

// Test that the missing included file causes an error.
func TestResolveIncludesMissing(t *testing.T) {
	files := map[string]string{"main": `{"b": <?include "missing"?>}`}

	_, err := keautil.ResolveIncludes("main", readFromMap(files))

	require.ErrorIs(t, err, os.ErrNotExist)
}
