package envutil

import (
	"os"
	"runtime"
	"strings"

	"code-intelligence.com/runtimedeps/util/stringutil"
)

// Like os.LookupEnv but uses the specified environment instead of the
// current process environment. On Windows, keys are compared case
// insensitively.
func LookupEnv(env []string, key string) (string, bool) {
	envMap := ToMap(env)
	if val, ok := envMap[key]; ok {
		return val, true
	}
	if runtime.GOOS == "windows" {
		for k, val := range envMap {
			if strings.EqualFold(k, key) {
				return val, true
			}
		}
	}
	return "", false
}

// Like os.Getenv but uses the specified environment instead of the
// current process environment.
func Getenv(env []string, key string) string {
	val, _ := LookupEnv(env, key)
	return val
}

// PathList returns the non-empty elements of the path list stored in
// the environment variable key (like PATH), split at
// os.PathListSeparator.
func PathList(env []string, key string) []string {
	return stringutil.SplitNonEmpty(Getenv(env, key), string(os.PathListSeparator))
}

// ToMap converts the specified strings representing an environment in
// the form "key=value" to a map.
func ToMap(env []string) map[string]string {
	res := make(map[string]string)
	for _, e := range env {
		s := strings.SplitN(e, "=", 2)
		if len(s) != 2 {
			continue
		}
		key, val := s[0], s[1]
		res[key] = val
	}
	return res
}
