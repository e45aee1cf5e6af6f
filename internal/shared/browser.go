package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var goos = func() string { return runtime.GOOS }

// OpenBrowser opens url in the default system browser. The auth login flow
// uses it to send the user to the platform consent page.
func OpenBrowser(url string) error {
	var name string
	args := []string{url}

	switch goos() {
	case "darwin":
		name = "open"
	case "linux":
		name = "xdg-open"
	case "windows":
		name, args = "cmd", []string{"/c", "start", url}
	default:
		return fmt.Errorf("no browser launcher for %s", goos())
	}

	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
