package versions

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		version       string
		commit        string
		buildDate     string
		vcs           map[string]string
		wantVersion   string
		wantCommit    string
		wantBuildDate string
	}{
		{
			name:          "release build keeps ldflags values",
			version:       "v1.2.0",
			commit:        "0123456789abcdef",
			buildDate:     "2026-01-15T10:30:00Z",
			vcs:           map[string]string{"vcs.revision": "ffffffff"},
			wantVersion:   "v1.2.0",
			wantCommit:    "0123456789abcdef",
			wantBuildDate: "2026-01-15 10:30:00 UTC",
		},
		{
			name:          "dev build uses vcs settings",
			version:       "dev",
			commit:        unknown,
			buildDate:     unknown,
			vcs:           map[string]string{"vcs.revision": "abcdef0123456789", "vcs.time": "2026-02-01T08:00:00Z"},
			wantVersion:   "build-abcdef01",
			wantCommit:    "abcdef0123456789",
			wantBuildDate: "2026-02-01 08:00:00 UTC",
		},
		{
			name:          "dev build without vcs settings",
			version:       "dev",
			commit:        unknown,
			buildDate:     unknown,
			vcs:           map[string]string{},
			wantVersion:   "build-unknown",
			wantCommit:    unknown,
			wantBuildDate: unknown,
		},
		{
			name:          "unparseable build date is kept",
			version:       "dev-local",
			commit:        "1234",
			buildDate:     "yesterday",
			wantVersion:   "dev-local",
			wantCommit:    "1234",
			wantBuildDate: "yesterday",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := resolve(tt.version, tt.commit, tt.buildDate, tt.vcs)
			assert.Equal(t, tt.wantVersion, info.Version)
			assert.Equal(t, tt.wantCommit, info.Commit)
			assert.Equal(t, tt.wantBuildDate, info.BuildDate)
			assert.Equal(t, runtime.Version(), info.GoVersion)
			assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
		})
	}
}

func TestInfo(t *testing.T) {
	t.Parallel()

	info := Info{
		Version:   "v1.0.0",
		Commit:    "abc",
		BuildDate: "today",
		BuildType: "release",
		GoVersion: "go1.25.2",
		Platform:  "linux/amd64",
	}
	assert.True(t, info.IsRelease())
	assert.Equal(t, "vsync-reactor v1.0.0 (commit abc, built today, go1.25.2 linux/amd64)", info.String())

	info.BuildType = "development"
	assert.False(t, info.IsRelease())
}
