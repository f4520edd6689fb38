//go:build webview

package window

import (
	"context"
	"runtime"

	webview "github.com/webview/webview_go"
)

// Width and Height are the initial window dimensions
const (
	Width  = 900
	Height = 960
)

// The native event loop must own the main thread
func init() {
	runtime.LockOSThread()
}

// Available reports whether a native window can be opened
func Available() bool {
	return true
}

// Open shows url in a native window and blocks until the window is closed
// or ctx is canceled. It must be called from the main goroutine.
func Open(ctx context.Context, title, url string) error {
	w := webview.New(false)
	defer w.Destroy()

	w.SetTitle(title)
	w.SetSize(Width, Height, webview.HintNone)
	w.Navigate(url)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			w.Dispatch(w.Terminate)
		case <-done:
		}
	}()

	// Run blocks until the window is closed
	w.Run()
	return nil
}
