package secret

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

const dollarSentinel = "\x00HEALTHOPS_DOLLAR\x00"

// ExpandEnvStrict expands environment variables in s.
//
// `$VAR` and `${VAR}` expand via os.ExpandEnv. A `${VAR}` whose variable is
// unset is an error wrapping ErrMissingEnv; bare `$VAR` expands to "".
// `$$` emits a literal `$`.
func ExpandEnvStrict(s string) (string, error) {
	if !strings.Contains(s, "$") {
		return s, nil
	}
	s = strings.ReplaceAll(s, "$$", dollarSentinel)

	var missing []string
	seen := make(map[string]bool)
	for _, match := range envVarPattern.FindAllStringSubmatch(s, -1) {
		key := match[1]
		if _, ok := os.LookupEnv(key); !ok && !seen[key] {
			seen[key] = true
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	return strings.ReplaceAll(os.ExpandEnv(s), dollarSentinel, "$"), nil
}
