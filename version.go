package main

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

var version = "dev"

// appVersion prefers the linker-provided version, then the module version,
// then a pseudo-version derived from VCS stamps.
func appVersion() string {
	v := strings.TrimSpace(version)
	if v != "" && v != "dev" {
		return v
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	if ver := strings.TrimSpace(bi.Main.Version); ver != "" && ver != "(devel)" {
		return ver
	}
	if derived := vcsVersion(bi.Settings); derived != "" {
		return derived
	}
	return "dev"
}

func vcsVersion(settings []debug.BuildSetting) string {
	get := func(key string) string {
		for _, s := range settings {
			if s.Key == key {
				return s.Value
			}
		}
		return ""
	}
	revision := get("vcs.revision")
	if revision == "" {
		return ""
	}
	short := revision[:min(len(revision), 12)]
	dirty := ""
	if get("vcs.modified") == "true" {
		dirty = "+dirty"
	}
	if t, err := time.Parse(time.RFC3339, get("vcs.time")); err == nil {
		return fmt.Sprintf("v0.0.0-%s-%s%s", t.UTC().Format("20060102150405"), short, dirty)
	}
	return short + dirty
}
