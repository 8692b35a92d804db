//go:build !unix

package node

import (
	"os"
	"os/signal"
)

// notifyTermination yields the name of the first interrupt request. At most
// one event is ever delivered; later requests are ignored.
func notifyTermination() <-chan string {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	out := make(chan string, 1)
	go func() {
		sig := <-sigCh
		signal.Stop(sigCh)
		out <- sig.String()
	}()
	return out
}
