package automate

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// Scroll wheel events move roughly this many pixels per click, so step
// counts from the worker layer are divided down to click counts.
const pixelsPerClick = 40

// XDoTool implements keyboard and scroll injection via the xdotool
// binary. Each call is one short-lived subprocess.
type XDoTool struct {
	bin string
}

func NewXDoTool() *XDoTool {
	return &XDoTool{bin: "xdotool"}
}

func (x *XDoTool) run(ctx context.Context, args ...string) error {
	out, err := exec.CommandContext(ctx, x.bin, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("xdotool %s: %w (%s)", args[0], err, out)
	}
	return nil
}

func (x *XDoTool) Type(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	return x.run(ctx, "type", "--delay", "30", "--", text)
}

// Key presses one named key or chord, e.g. "Return", "BackSpace",
// "ctrl+BackSpace".
func (x *XDoTool) Key(ctx context.Context, name string) error {
	return x.run(ctx, "key", "--", name)
}

// Scroll turns a signed pixel step into wheel clicks; positive is up.
func (x *XDoTool) Scroll(steps int) error {
	if steps == 0 {
		return nil
	}
	button := "5"
	if steps > 0 {
		button = "4"
	} else {
		steps = -steps
	}
	clicks := steps / pixelsPerClick
	if clicks < 1 {
		clicks = 1
	}
	return x.run(context.Background(), "click", "--repeat", strconv.Itoa(clicks), button)
}
