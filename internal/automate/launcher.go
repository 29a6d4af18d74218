package automate

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9 ]+`)

// Launcher indexes the desktop entries installed on the machine and
// starts applications by spoken name.
type Launcher struct {
	apps map[string]string // normalized name -> exec command line
}

func desktopDirs() []string {
	home, _ := os.UserHomeDir()
	return []string{
		"/usr/share/applications",
		"/usr/local/share/applications",
		filepath.Join(home, ".local/share/applications"),
	}
}

func NewLauncher() *Launcher {
	l := &Launcher{apps: make(map[string]string)}
	for _, dir := range desktopDirs() {
		entries, err := filepath.Glob(filepath.Join(dir, "*.desktop"))
		if err != nil {
			continue
		}
		for _, path := range entries {
			name, execLine, err := parseDesktopEntry(path)
			if err != nil || name == "" || execLine == "" {
				continue
			}
			l.apps[normalizeAppName(name)] = execLine
		}
	}
	slog.Info("automate: indexed applications", "count", len(l.apps))
	return l
}

// parseDesktopEntry pulls the first Name= and Exec= lines, with field
// codes (%u, %F, ...) stripped from the command.
func parseDesktopEntry(path string) (name, execLine string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case name == "" && strings.HasPrefix(line, "Name="):
			name = strings.TrimPrefix(line, "Name=")
		case execLine == "" && strings.HasPrefix(line, "Exec="):
			execLine = strings.TrimPrefix(line, "Exec=")
			if i := strings.Index(execLine, "%"); i >= 0 {
				execLine = execLine[:i]
			}
			execLine = strings.TrimSpace(execLine)
		}
		if name != "" && execLine != "" {
			break
		}
	}
	return name, execLine, sc.Err()
}

func normalizeAppName(name string) string {
	return strings.TrimSpace(nonAlnumRe.ReplaceAllString(strings.ToLower(name), ""))
}

// Resolve finds the command for a spoken app name, trying an exact
// normalized match first and a substring match second.
func (l *Launcher) Resolve(name string) (string, bool) {
	want := normalizeAppName(name)
	if want == "" {
		return "", false
	}
	if cmd, ok := l.apps[want]; ok {
		return cmd, true
	}
	for indexed, cmd := range l.apps {
		if strings.Contains(indexed, want) {
			return cmd, true
		}
	}
	return "", false
}

func (l *Launcher) OpenApp(ctx context.Context, name string) error {
	cmdline, ok := l.Resolve(name)
	if !ok {
		return fmt.Errorf("automate: no application matching %q", name)
	}
	fields := strings.Fields(cmdline)
	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("automate: start %q: %w", fields[0], err)
	}
	go cmd.Wait()
	slog.Info("automate: launched", "app", name, "cmd", fields[0])
	return nil
}

func (l *Launcher) OpenURL(ctx context.Context, url string) error {
	return xdgOpen(ctx, url)
}

func (l *Launcher) OpenFile(ctx context.Context, path string) error {
	return xdgOpen(ctx, path)
}

func xdgOpen(ctx context.Context, target string) error {
	cmd := exec.CommandContext(ctx, "xdg-open", target)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("automate: xdg-open %q: %w", target, err)
	}
	go cmd.Wait()
	return nil
}
