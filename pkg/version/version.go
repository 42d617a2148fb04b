package version

import (
	"fmt"
	"runtime"
)

// These variables are set via ldflags during build.
var (
	Version   = "dev"
	Commit    = "none"
	Date      = "unknown"
	GoVersion = runtime.Version()
)

func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Summary returns the version with a short commit suffix when known.
func Summary() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	if Commit != "" && Commit != "none" {
		short := Commit
		if len(short) > 7 {
			short = short[:7]
		}
		return fmt.Sprintf("chatbox %s (%s)", v, short)
	}
	return "chatbox " + v
}

// UserAgent is sent in the handshake headers of outbound connections.
func UserAgent() string {
	return fmt.Sprintf("chatbox/%s (%s; %s)", Summary()[len("chatbox "):], Platform(), GoVersion)
}
