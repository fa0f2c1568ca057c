// Package version provides build and release information for the columnar
// module.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

const (
	unknownValue     = "unknown"
	commitHashLength = 7
	arrowModulePath  = "github.com/apache/arrow-go/v18"

	// ArrowConstraint is the arrow-go range the interop layer is written against.
	ArrowConstraint = ">= 18.0.0, < 19.0.0"
)

// Release channels reported by Channel.
const (
	ChannelRelease     = "release"
	ChannelPreRelease  = "pre-release"
	ChannelDevelopment = "development"
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	BuildDate = unknownValue
	GitCommit = unknownValue
	GitTag    = unknownValue
	GoVersion = runtime.Version()
)

// BuildInfo contains detailed build information
type BuildInfo struct {
	Version      string    `json:"version"`
	BuildDate    string    `json:"build_date"`
	GitCommit    string    `json:"git_commit"`
	GitTag       string    `json:"git_tag"`
	GoVersion    string    `json:"go_version"`
	ArrowVersion string    `json:"arrow_version"`
	BuildTime    time.Time `json:"build_time"`
	Dirty        bool      `json:"dirty"`
	Channel      string    `json:"channel"`
	Main         Module    `json:"main"`
	Deps         []Module  `json:"deps"`
}

// Module represents a Go module with version information
type Module struct {
	Path    string `json:"path"`
	Version string `json:"version"`
	Sum     string `json:"sum"`
}

// Info returns detailed build information
func Info() BuildInfo {
	buildTime, _ := time.Parse(time.RFC3339, BuildDate)
	if buildTime.IsZero() {
		buildTime = time.Now()
	}

	info := BuildInfo{
		Version:      Version,
		BuildDate:    BuildDate,
		GitCommit:    GitCommit,
		GitTag:       GitTag,
		GoVersion:    GoVersion,
		ArrowVersion: unknownValue,
		BuildTime:    buildTime,
		Dirty:        strings.Contains(GitCommit, "-dirty"),
		Channel:      Channel(Version),
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.Main = Module{
			Path:    buildInfo.Main.Path,
			Version: buildInfo.Main.Version,
			Sum:     buildInfo.Main.Sum,
		}
		for _, dep := range buildInfo.Deps {
			info.Deps = append(info.Deps, Module{
				Path:    dep.Path,
				Version: dep.Version,
				Sum:     dep.Sum,
			})
			if dep.Path == arrowModulePath {
				info.ArrowVersion = dep.Version
			}
		}
	}

	return info
}

// String returns a formatted version string
func (b BuildInfo) String() string {
	var sb strings.Builder
	sb.WriteString("columnar compute kernels\n")
	fmt.Fprintf(&sb, "Version: %s", b.Version)

	if b.GitTag != unknownValue && b.GitTag != "" && b.GitTag != b.Version {
		fmt.Fprintf(&sb, " (%s)", b.GitTag)
	}
	if b.Dirty {
		sb.WriteString(" (dirty)")
	}
	sb.WriteString("\n")
	if b.Channel != "" {
		fmt.Fprintf(&sb, "Channel: %s\n", b.Channel)
	}

	if b.BuildDate != unknownValue && b.BuildDate != "" {
		fmt.Fprintf(&sb, "Build Date: %s\n", b.BuildDate)
	}
	if b.GitCommit != unknownValue && b.GitCommit != "" {
		commit := b.GitCommit
		if len(commit) > commitHashLength {
			commit = commit[:commitHashLength]
		}
		fmt.Fprintf(&sb, "Git Commit: %s\n", commit)
	}

	fmt.Fprintf(&sb, "Go Version: %s\n", b.GoVersion)
	if b.ArrowVersion != unknownValue && b.ArrowVersion != "" {
		fmt.Fprintf(&sb, "Arrow Version: %s", b.ArrowVersion)
		if ok, err := satisfies(b.ArrowVersion, ArrowConstraint); err == nil && !ok {
			fmt.Fprintf(&sb, " (outside %s)", ArrowConstraint)
		}
		sb.WriteString("\n")
	}
	if b.Main.Path != "" {
		fmt.Fprintf(&sb, "Module: %s\n", b.Main.Path)
	}

	return sb.String()
}

// Short returns the module name and version, e.g. "columnar/v1.2.0".
func Short() string {
	return "columnar/" + Version
}

// Parse parses a strict semantic version, with or without a leading "v".
func Parse(v string) (*semver.Version, error) {
	if v == "" {
		return nil, fmt.Errorf("version string cannot be empty")
	}
	parsed, err := semver.StrictNewVersion(strings.TrimPrefix(v, "v"))
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", v, err)
	}
	return parsed, nil
}

// Channel classifies v: a semantic version without a pre-release suffix is
// a release, alpha, beta and rc suffixes are pre-releases, and anything else
// (including "dev" and "-dirty" builds) is development.
func Channel(v string) string {
	parsed, err := Parse(v)
	if err != nil {
		return ChannelDevelopment
	}
	pre := parsed.Prerelease()
	switch {
	case pre == "":
		return ChannelRelease
	case strings.HasPrefix(pre, "alpha"), strings.HasPrefix(pre, "beta"), strings.HasPrefix(pre, "rc"):
		return ChannelPreRelease
	default:
		return ChannelDevelopment
	}
}

// satisfies reports whether v meets constraint, e.g. ">= 1.2, < 2".
// Unparsable versions never satisfy a constraint.
func satisfies(v, constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	parsed, err := Parse(v)
	if err != nil {
		return false, nil
	}
	return c.Check(parsed), nil
}
