package compile

import "testing"

func TestShortenPathAgainstCwd(t *testing.T) {
	cases := []struct {
		path string
		cwd  string
		want string
	}{
		{"/projects/myapp/src/main.ts", "/projects/myapp", "src/main.ts"},
		{"/projects/myapp", "/projects/myapp", "."},
		{"/tmp/x.ts", "/projects/myapp", "/tmp/x.ts"},
		// Sibling directory sharing a name prefix is not inside cwd.
		{"/projects/myapp2/main.ts", "/projects/myapp", "/projects/myapp2/main.ts"},
	}

	for _, tc := range cases {
		if got := shortenPath(tc.path, tc.cwd, "", ""); got != tc.want {
			t.Errorf("shortenPath(%q, %q) = %q, want %q", tc.path, tc.cwd, got, tc.want)
		}
	}
}

func TestShortenPathAgainstHome(t *testing.T) {
	const home = "/Users/dev"
	const realHome = "/System/Volumes/Data/Users/dev"

	cases := []struct {
		path string
		want string
	}{
		{"/Users/dev", "~"},
		{"/Users/dev/notes.md", "~/notes.md"},
		{"/Users/dev/a/b/c", "~/a/b/c"},
		{"/Users/dev/a/b/c/d", "~/…/b/c/d"},
		// Resolved-home alias matches too.
		{"/System/Volumes/Data/Users/dev/a/b", "~/a/b"},
		{"/opt/other/place", "/opt/other/place"},
	}

	for _, tc := range cases {
		if got := shortenPath(tc.path, "/projects/elsewhere", home, realHome); got != tc.want {
			t.Errorf("shortenPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestShortenPathCwdWinsOverHome(t *testing.T) {
	// A path inside both cwd and home shortens relative to cwd.
	got := shortenPath("/Users/dev/proj/x.go", "/Users/dev/proj", "/Users/dev", "")
	if got != "x.go" {
		t.Errorf("got %q, want x.go", got)
	}
}
