package envutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetenv(t *testing.T) {
	var val string

	val = Getenv([]string{}, "foo")
	require.Equal(t, val, "")

	val = Getenv([]string{"foo=bar"}, "foo")
	require.Equal(t, val, "bar")

	// Values may contain "="
	val = Getenv([]string{"VS170COMNTOOLS=C:\\VS\\Common7\\Tools\\", "OPTS=a=b"}, "OPTS")
	require.Equal(t, val, "a=b")
}

func TestLookupEnv(t *testing.T) {
	_, found := LookupEnv([]string{"foo=bar"}, "baz")
	require.False(t, found)

	val, found := LookupEnv([]string{"foo="}, "foo")
	require.True(t, found)
	require.Equal(t, "", val)
}

func TestPathList(t *testing.T) {
	sep := string(os.PathListSeparator)
	env := []string{"PATH=/usr/local/bin" + sep + sep + "/usr/bin"}
	require.Equal(t, []string{"/usr/local/bin", "/usr/bin"}, PathList(env, "PATH"))
	require.Empty(t, PathList(env, "LD_LIBRARY_PATH"))
}

func TestToMap(t *testing.T) {
	res := ToMap([]string{"FOO=foo", "invalid", "BAR=bar"})
	require.Equal(t, map[string]string{"FOO": "foo", "BAR": "bar"}, res)
}
