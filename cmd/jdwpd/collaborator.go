package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-jdwp/jdwpd/jdwp"
)

// loggingCollaborator is the demo Collaborator: it never touches a real
// runtime, it just prints what a debugger asked for and replies with an
// empty payload and JDWP error code 0 (NONE) to every request.
type loggingCollaborator struct {
	jdwp.NopCollaborator
}

func (c *loggingCollaborator) AttachCurrentThread(ctx context.Context) error {
	fmt.Println("jdwpd: worker goroutine attached")
	return nil
}

func (c *loggingCollaborator) DetachCurrentThread() {
	fmt.Println("jdwpd: worker goroutine detached")
}

func (c *loggingCollaborator) Connected() {
	fmt.Println("jdwpd: debugger attached")
}

func (c *loggingCollaborator) Disconnected() {
	fmt.Println("jdwpd: debugger detached")
}

func (c *loggingCollaborator) ProcessRequest(ctx context.Context, cmdSet, cmd uint8, data []byte) ([]byte, uint16, error) {
	fmt.Printf("jdwpd: command set=%d cmd=%d, %d bytes of data\n", cmdSet, cmd, len(data))
	return nil, 0, nil
}

func (c *loggingCollaborator) ProcessID() int {
	return os.Getpid()
}

func splitListenAddr(addr string) (string, uint16, error) {
	host, portStr, found := strings.Cut(addr, ":")
	if !found {
		host, portStr = "", addr
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("invalid --listen %q: %w", addr, err)
	}
	return host, uint16(port), nil
}
