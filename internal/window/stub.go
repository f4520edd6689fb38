//go:build !webview

package window

import (
	"context"
	"errors"
)

// Stub implementation when the webview library is not compiled in.
// Build with -tags webview to enable the native window.

// ErrUnavailable is returned by Open in builds without webview support
var ErrUnavailable = errors.New("native window not available: rebuild with -tags webview")

// Available always returns false without webview
func Available() bool {
	return false
}

// Open always fails without webview
func Open(_ context.Context, _, _ string) error {
	return ErrUnavailable
}
