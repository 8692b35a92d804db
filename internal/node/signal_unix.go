//go:build unix

package node

import (
	"os"
	"os/signal"
	"syscall"
)

// notifyTermination yields the name of the first termination request, SIGINT
// or SIGTERM, whichever arrives first. At most one event is ever delivered;
// later requests are ignored.
func notifyTermination() <-chan string {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	out := make(chan string, 1)
	go func() {
		sig := <-sigCh
		signal.Stop(sigCh)
		out <- sig.String()
	}()
	return out
}
