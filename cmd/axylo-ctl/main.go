package main

import (
	"fmt"
	"os"
	"strings"

	cli "github.com/spf13/pflag"

	"axylo/internal/ipc"
)

const usage = `usage: axylo-ctl <command> [arg]

commands:
  dispatch <text>              route text as if it had been spoken
  mic on|off                   toggle the microphone
  mute on|off                  toggle speech output
  stop                         shut the daemon down
  diag                         run diagnostics
  scroll-start [dir] [speed]   start auto-scroll (down slow by default)
  scroll-stop                  stop auto-scroll
`

func main() {
	cli.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	cli.Parse()

	args := cli.Args()
	if len(args) == 0 {
		cli.Usage()
		os.Exit(2)
	}

	cmd := args[0]
	arg := strings.Join(args[1:], " ")

	reply, err := ipc.Send(cmd, arg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "axylo-daemon not running:", err)
		os.Exit(1)
	}

	if reply.Message != "" {
		fmt.Println(reply.Message)
	}
	if !reply.Ok {
		os.Exit(1)
	}
}
