package version

import "testing"

func TestDefaults(t *testing.T) {
	if Version != "dev" {
		t.Errorf("default Version = %q, want %q", Version, "dev")
	}
	if GitCommit != "unknown" {
		t.Errorf("default GitCommit = %q, want %q", GitCommit, "unknown")
	}
}

func TestInfo(t *testing.T) {
	if got, want := Info(), "dev (unknown) built unknown"; got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
	if got, want := UserAgent(), "SSH-2.0-newtcheck_dev"; got != want {
		t.Errorf("UserAgent() = %q, want %q", got, want)
	}
}
