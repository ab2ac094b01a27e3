package notifier

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_EmailNotifier(t *testing.T) {
	t.Parallel()

	t.Run("send gives up when context expires", func(t *testing.T) {
		// A listener that accepts the connection but never speaks SMTP, the
		// dial hangs waiting for the greeting and only the context frees us
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		go func() {
			for {
				conn, err := ln.Accept()
				if err != nil {
					return
				}
				defer conn.Close()
			}
		}()

		addr := ln.Addr().(*net.TCPAddr)
		n := NewEmail(EmailConfig{
			Host: addr.IP.String(),
			Port: addr.Port,
			From: "noreply@example.com",
		})

		ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
		defer cancel()

		begin := time.Now()
		err = n.Send(ctx, "user@example.com", "4821")

		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.Less(t, time.Since(begin), 2*time.Second, "send must return soon after the deadline, not block")
	})
}
