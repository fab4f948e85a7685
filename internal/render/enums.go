package render

// Code tables for the enumerated snapshot fields.
var (
	ModeNames = map[int]string{
		-1: "IDLE",
		0:  "CTRL",
		1:  "NAV",
		2:  "REMOTE",
	}

	SourceNames = map[int]string{
		-1: "NONE",
		0:  "NAV",
		1:  "TELEOP",
	}

	NetworkStatusNames = map[int]string{
		0: "OK",
		1: "HB_DELAY",
		2: "SOCKET_ERR",
	}

	BridgeFlagNames = map[int]string{
		0: "OK",
		1: "SERVER_CMD",
		2: "SOCKET",
		3: "HB_TIMEOUT",
		4: "CTRL_TIMEOUT",
	}

	MuxFlagNames = map[int]string{
		0: "OK",
		1: "REMOTE_NAV_NO_TELEOP",
	}
)

// networkStatusSeverity grades the link status code; unknown codes warn.
func networkStatusSeverity(code int) Severity {
	switch code {
	case 0:
		return Normal
	case 2:
		return Critical
	default:
		return Warning
	}
}

// alertSeverity maps a backend alert level.
func alertSeverity(level string) Severity {
	switch level {
	case "error":
		return Critical
	case "warn":
		return Warning
	default:
		return Normal
	}
}
