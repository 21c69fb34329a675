// Package browser opens web app routes in the system browser.
package browser

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// RouteURL joins the web front end's base URL and a fragment route such as
// "#/transcript?jobId=3".
func RouteURL(webURL, route string) string {
	base := strings.TrimRight(webURL, "/") + "/"
	if route == "" {
		return base
	}
	if !strings.HasPrefix(route, "#") {
		route = "#" + route
	}
	return base + route
}

// command picks the launcher for goos; $BROWSER wins when set.
func command(goos, url string) (*exec.Cmd, error) {
	if b := os.Getenv("BROWSER"); b != "" {
		return exec.Command(b, url), nil
	}
	switch goos {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}

// Open opens the specified URL in the user's default browser.
func Open(url string) error {
	cmd, err := command(runtime.GOOS, url)
	if err != nil {
		return err
	}
	return cmd.Start()
}
