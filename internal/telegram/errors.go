package telegram

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/gotd/td/tgerr"
)

// IsTransient reports whether a failed RPC is worth retrying: flood waits,
// server-side failures and broken connections. Cancellation never is.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if _, ok := tgerr.AsFloodWait(err); ok {
		return true
	}
	if rpcErr, ok := tgerr.As(err); ok {
		return rpcErr.Code >= 500 || rpcErr.Code == 420
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
