package hostfs

// Well-known host file locations.
const (
	EtcPasswd = "/etc/passwd"
	EtcShadow = "/etc/shadow"
	EtcGroup  = "/etc/group"
	EtcShells = "/etc/shells"

	// Login accounting databases (see utmp(5)).
	RunUtmp = "/var/run/utmp"
	LogWtmp = "/var/log/wtmp"

	ConfigDir     = "/etc/ttylogin"
	ConfigFile    = ConfigDir + "/config.toml"
	SessionsFile  = ConfigDir + "/sessions.toml"
	IssueFile     = ConfigDir + "/issue.md"
	SelectionFile = "/var/lib/ttylogin/last.yaml"
)
