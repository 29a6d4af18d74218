// Package automate drives the desktop: synthetic keystrokes, scrolling
// and application launching. Everything shells out to the usual X11
// utilities so the assistant has no display dependency of its own.
package automate

import "context"

// Keyboard injects keystrokes into the focused window.
type Keyboard interface {
	Type(ctx context.Context, text string) error
	Key(ctx context.Context, name string) error
}

// Opener starts applications and hands URLs or files to the desktop.
type Opener interface {
	OpenApp(ctx context.Context, name string) error
	OpenURL(ctx context.Context, url string) error
	OpenFile(ctx context.Context, path string) error
}
