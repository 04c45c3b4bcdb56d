package build

// Set through -ldflags "-X github.com/tatsuyakari1203/wp-crawl-tool/internal/build.Version=..." at release time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

const toolName = "wp-crawl-tool"

// FullVersion joins the release version and the commit, e.g. "1.2.0+abc123".
func FullVersion() string {
	return Version + "+" + Commit
}

// Banner is the line printed by the version command.
func Banner() string {
	return toolName + " " + FullVersion() + " (built " + BuildTime + ")"
}
