package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/consent"
)

// stdinPrompter is a Prompter good enough for manual exercising: it
// prints the request and reads a y/n line from stdin. A production UI
// layer (desktop notification, system tray) implements the same
// interface with a real dialog.
type stdinPrompter struct {
	reader *bufio.Reader
}

func newStdinPrompter() *stdinPrompter {
	return &stdinPrompter{}
}

func (p *stdinPrompter) Prompt(ctx context.Context, req consent.Request) <-chan bool {
	decision := make(chan bool, 1)
	go func() {
		fmt.Printf("consent requested: app=%q devices=%s screen_capture=%v — allow? [y/N] ",
			req.AppID, req.DeviceTypes, req.IncludeScreenCapture)

		if p.reader == nil {
			p.reader = bufio.NewReader(os.Stdin)
		}
		line, err := p.reader.ReadString('\n')
		if err != nil {
			close(decision)
			return
		}
		decision <- strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "y")
	}()
	return decision
}
