// Package version exposes the build identity served by /health and the
// /version bot command.
package version

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const Name = "MAT Bot"

// Overridable at build time:
//
//	go build -ldflags "-X mat-bot/internal/version.Version=1.2.3 -X mat-bot/internal/version.GitSHA=$(git rev-parse HEAD)"
var (
	Version   = ""
	GitSHA    = ""
	BuildTime = ""
)

// Info is the version document.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GitSHA    string `json:"git_sha"`
	BuildTime string `json:"build_time"`
}

// Get resolves the build identity, falling back to the APP_VERSION,
// GIT_SHA and BUILD_TIME environment variables. The commit hash is
// shortened to seven characters.
func Get() Info {
	ver := firstNonEmpty(Version, os.Getenv("APP_VERSION"), "0.1.0")

	sha := strings.TrimSpace(firstNonEmpty(GitSHA, os.Getenv("GIT_SHA")))
	if sha == "" {
		sha = "dev"
	}
	if len(sha) > 7 {
		sha = sha[:7]
	}

	build := firstNonEmpty(BuildTime, os.Getenv("BUILD_TIME"))
	if build == "" {
		build = time.Now().UTC().Format(time.RFC3339)
	}

	return Info{Name: Name, Version: ver, GitSHA: sha, BuildTime: build}
}

// Text renders the one-line form the bot replies to /version with.
func Text() string {
	info := Get()
	return fmt.Sprintf("%s v%s (commit %s, build %s)", info.Name, info.Version, info.GitSHA, info.BuildTime)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
