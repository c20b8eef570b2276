package terminal

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"
)

var (
	crashMu     sync.Mutex
	crashScreen *Renderer
)

func registerCrashScreen(r *Renderer) {
	crashMu.Lock()
	crashScreen = r
	crashMu.Unlock()
}

func unregisterCrashScreen(r *Renderer) {
	crashMu.Lock()
	if crashScreen == r {
		crashScreen = nil
	}
	crashMu.Unlock()
}

// HandleCrash restores the active screen, prints the panic and stack, and exits 1
// Call from a deferred recover in main
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	active := crashScreen
	crashMu.Unlock()
	if active != nil {
		active.Close()
	}

	fmt.Fprintf(os.Stderr, "\n\x1b[31mGRIDEDIT CRASHED: %v\x1b[0m\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())

	os.Exit(1)
}
