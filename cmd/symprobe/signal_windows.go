//go:build windows

package main

import (
	"os"
	"os/signal"
)

// notifySignals registers the signals that interrupt a sweep. SIGTERM does
// not exist on Windows.
func notifySignals(ch chan<- os.Signal) {
	signal.Notify(ch, os.Interrupt)
}
