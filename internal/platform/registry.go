package platform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
)

var aliases = map[string]string{
	"mysql":      "mysql",
	"mariadb":    "mariadb",
	"postgres":   "postgres",
	"postgresql": "postgres",
	"pgsql":      "postgres",
}

// New returns the platform registered under name. An empty serverVersion
// selects the platform default.
func New(name, serverVersion string) (Platform, error) {
	canonical, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown platform %q (supported: %s)", name, strings.Join(Names(), ", "))
	}

	var v *version.Version
	if serverVersion != "" {
		parsed, err := version.NewVersion(serverVersion)
		if err != nil {
			return nil, fmt.Errorf("invalid %s version %q: %w", canonical, serverVersion, err)
		}
		v = parsed
	}

	switch canonical {
	case "mysql":
		return NewMySQL(v), nil
	case "mariadb":
		p := NewMySQL(v)
		p.name = "mariadb"
		return p, nil
	default:
		return NewPostgreSQL(v), nil
	}
}

// Names returns every accepted platform name, aliases included.
func Names() []string {
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
