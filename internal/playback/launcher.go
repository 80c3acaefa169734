package playback

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Launcher opens a player page for the user.
type Launcher interface {
	// Open shows the page at url.
	Open(url string) error

	// Name returns the launcher name.
	Name() string

	// Available checks if the launcher binary exists in PATH.
	Available() bool
}

// Browser opens pages in the system web browser.
type Browser struct {
	goos string
}

// NewBrowser creates a launcher for the current platform.
func NewBrowser() *Browser {
	return &Browser{goos: runtime.GOOS}
}

func (b *Browser) Name() string {
	name, _ := browserCommand(b.goos, "")
	return name
}

func (b *Browser) Available() bool {
	_, err := exec.LookPath(b.Name())
	return err == nil
}

// Open launches the browser without waiting for it to exit. Arguments are
// passed as an explicit slice; no shell is involved.
func (b *Browser) Open(url string) error {
	name, args := browserCommand(b.goos, url)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("running %s: %w", name, err)
	}
	go cmd.Wait()
	return nil
}

func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// Printer writes the URL instead of opening it, for headless use.
type Printer struct {
	Out func(format string, a ...any) (int, error)
}

func (Printer) Name() string    { return "print" }
func (Printer) Available() bool { return true }

func (p Printer) Open(url string) error {
	_, err := p.Out("%s\n", url)
	return err
}

// NewLauncher picks a launcher by name: "browser" (default) or "print".
func NewLauncher(name string, out func(format string, a ...any) (int, error)) Launcher {
	switch name {
	case "print":
		return Printer{Out: out}
	default:
		return NewBrowser()
	}
}
