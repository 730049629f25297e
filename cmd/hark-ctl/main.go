// hark-ctl sends one control command to a running hark daemon.
//
// Usage:
//
//	hark-ctl trigger
//	hark-ctl stop
//	hark-ctl say <text...>
package main

import (
	"fmt"
	"os"
	"strings"

	"hark/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: hark-ctl trigger|stop|say [text]")
		os.Exit(2)
	}

	msg := ipc.ControlMessage{Cmd: os.Args[1]}
	if msg.Cmd == ipc.CmdSay {
		msg.Text = strings.Join(os.Args[2:], " ")
	}

	if err := ipc.Send(msg); err != nil {
		fmt.Println("hark daemon not running:", err)
		os.Exit(1)
	}
}
