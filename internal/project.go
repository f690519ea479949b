package internal

import (
	"path"
	"regexp"
	"strings"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns an arbitrary name into a filesystem- and key-safe project
// id: lowercase, runs of non-alphanumerics collapsed to a single dash.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ResolveProjectID derives the stable identity of a repository. Resolution
// order: explicit override, then owner/repo parsed from the remote URL, then
// the repository root directory name.
func ResolveProjectID(override, remoteURL, rootDir string) string {
	if override != "" {
		return Slugify(override)
	}
	if owner, repo, ok := ParseRemote(remoteURL); ok {
		return Slugify(owner + "-" + repo)
	}
	return Slugify(path.Base(strings.TrimRight(rootDir, "/")))
}

// ParseRemote extracts owner and repo from the common git remote URL shapes:
// https://host/owner/repo(.git), git@host:owner/repo(.git) and
// ssh://git@host/owner/repo(.git).
func ParseRemote(remoteURL string) (owner, repo string, ok bool) {
	u := strings.TrimSpace(remoteURL)
	if u == "" {
		return "", "", false
	}
	u = strings.TrimSuffix(u, "/")
	u = strings.TrimSuffix(u, ".git")

	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	} else if i := strings.Index(u, "@"); i >= 0 && strings.Contains(u[i:], ":") {
		// scp-like syntax: git@host:owner/repo
		u = strings.Replace(u[i+1:], ":", "/", 1)
	}

	parts := strings.Split(u, "/")
	if len(parts) < 3 {
		return "", "", false
	}
	owner, repo = parts[len(parts)-2], parts[len(parts)-1]
	if owner == "" || repo == "" {
		return "", "", false
	}
	return owner, repo, true
}
