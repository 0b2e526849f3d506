package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/gotd/td/tgerr"

	"github.com/danhigham/telecache/internal/remote"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), false},
		{"flood wait", tgerr.New(420, "FLOOD_WAIT_3"), true},
		{"internal", tgerr.New(500, "INTERNAL"), true},
		{"bad request", tgerr.New(400, "PEER_ID_INVALID"), false},
		{"forbidden", tgerr.New(403, "CHAT_ADMIN_REQUIRED"), false},
		{"eof", fmt.Errorf("read: %w", io.EOF), true},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		if got := IsTransient(tt.err); got != tt.want {
			t.Errorf("%s: IsTransient = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestClassifyChannelPrivate(t *testing.T) {
	err := classify(tgerr.New(406, "CHANNEL_PRIVATE"))
	if !errors.Is(err, remote.ErrChannelPrivate) {
		t.Errorf("classify(CHANNEL_PRIVATE) = %v, want ErrChannelPrivate", err)
	}
	if IsTransient(err) {
		t.Error("CHANNEL_PRIVATE should not be transient")
	}

	other := tgerr.New(400, "CHAT_ID_INVALID")
	if errors.Is(classify(other), remote.ErrChannelPrivate) {
		t.Error("unrelated error mapped to ErrChannelPrivate")
	}
}
