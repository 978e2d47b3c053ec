package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// BuildVersion overrides the module version recorded in the build info.
// It is set with -ldflags "-X modelviz.dev/modelviz/internal/version.BuildVersion=...".
var BuildVersion = "n/a"

// develVersion is reported for binaries built from a checkout.
const develVersion = "0.0.0-dev"

type Info struct {
	Major      string `json:"major"`
	Minor      string `json:"minor"`
	Patch      string `json:"patch"`
	PreRelease string `json:"prerelease,omitempty"`
	Meta       string `json:"meta,omitempty"`
	GitVersion string `json:"gitVersion"`
	GitCommit  string `json:"gitCommit,omitempty"`
	BuildDate  string `json:"buildDate,omitempty"`
	GoVersion  string `json:"goVersion"`
	Compiler   string `json:"compiler"`
	Platform   string `json:"platform"`
}

// Get reads the version from the build info of the running binary.
func Get() (Info, error) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return Info{}, fmt.Errorf("could not read build info")
	}
	return FromBuildInfo(bi)
}

// FromBuildInfo derives the version info from bi. Pseudo versions of the
// form v0.0.0-20240101120000-abcdef123456 yield a build date and a commit.
func FromBuildInfo(bi *debug.BuildInfo) (Info, error) {
	raw := bi.Main.Version
	if BuildVersion != "n/a" {
		raw = BuildVersion
	}
	if raw == "" || raw == "(devel)" {
		raw = develVersion
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return Info{}, fmt.Errorf("could not parse version %q: %w", raw, err)
	}

	var gitCommit, buildDate string
	if prerelease := v.Prerelease(); prerelease != "" {
		parts := strings.Split(prerelease, "-")
		if len(parts) >= 2 {
			buildDate, gitCommit = parts[len(parts)-2], parts[len(parts)-1]
			if i := strings.LastIndex(buildDate, "."); i >= 0 {
				buildDate = buildDate[i+1:]
			}
		}
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if gitCommit == "" {
				gitCommit = s.Value
			}
		case "vcs.time":
			if buildDate == "" {
				buildDate = s.Value
			}
		}
	}

	return Info{
		Major:      strconv.FormatUint(v.Major(), 10),
		Minor:      strconv.FormatUint(v.Minor(), 10),
		Patch:      strconv.FormatUint(v.Patch(), 10),
		PreRelease: v.Prerelease(),
		Meta:       v.Metadata(),
		GitVersion: "v" + v.String(),
		GitCommit:  gitCommit,
		BuildDate:  buildDate,
		GoVersion:  bi.GoVersion,
		Compiler:   runtime.Compiler,
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}, nil
}
