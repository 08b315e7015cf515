package compile

import (
	"os"
	"path/filepath"
	"strings"
)

// ShortenPath rewrites an absolute path for display: paths inside the
// session's working directory become relative, paths under the user's home
// directory become ~-prefixed (keeping at most the last three segments),
// anything else is returned unchanged.
func ShortenPath(path, cwd string) string {
	home, _ := os.UserHomeDir()
	realHome := ""
	if home != "" {
		// macOS aliases /home-style paths through symlinks; match both
		// the nominal and the resolved home prefix.
		if resolved, err := filepath.EvalSymlinks(home); err == nil && resolved != home {
			realHome = resolved
		}
	}
	return shortenPath(path, cwd, home, realHome)
}

func shortenPath(path, cwd, home, realHome string) string {
	if path == cwd {
		return "."
	}
	if cwd != "" && strings.HasPrefix(path, cwd+"/") {
		return path[len(cwd)+1:]
	}

	for _, h := range []string{home, realHome} {
		if h == "" {
			continue
		}
		var rest string
		switch {
		case path == h:
			return "~"
		case strings.HasPrefix(path, h+"/"):
			rest = path[len(h)+1:]
		default:
			continue
		}
		segments := strings.Split(rest, "/")
		if len(segments) > 3 {
			return "~/…/" + strings.Join(segments[len(segments)-3:], "/")
		}
		return "~/" + rest
	}

	return path
}
