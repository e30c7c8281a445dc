// Package display talks to a DGUS display over its configuration UART and
// exposes its VP memory as a dgus.Memory, so the peripheral wrappers work
// from a PC the same way they do on the display's own CPU.
package display

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-retry"

	"dgusos/config"
	"dgusos/host/serial"
	"dgusos/protocol"
)

var (
	// ErrTimeout is returned when no matching reply arrives in time.
	ErrTimeout = errors.New("display: reply timeout")

	// ErrUnexpectedReply is returned when the display answers a different
	// request.
	ErrUnexpectedReply = errors.New("display: unexpected reply")
)

// Client is a DGUS serial client. It is safe for concurrent use; requests
// are serialized on the port.
type Client struct {
	mu      sync.Mutex
	port    serial.Port
	crc     bool
	timeout time.Duration
	retries uint64
	backoff time.Duration

	dec protocol.Decoder
	rx  *protocol.FifoBuffer
	out *protocol.ScratchOutput
	buf [64]byte
}

// Option configures a Client.
type Option func(*Client)

// WithCRC enables the CRC trailer. It must match the display's setting.
func WithCRC(on bool) Option {
	return func(c *Client) {
		c.crc = on
		c.dec.CRC = on
	}
}

// WithTimeout sets how long to wait for each reply.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRetry retries timed out or corrupted exchanges up to n times with a
// Fibonacci backoff starting at base.
func WithRetry(n uint64, base time.Duration) Option {
	return func(c *Client) {
		c.retries = n
		c.backoff = base
	}
}

// New returns a client on port.
func New(port serial.Port, opts ...Option) *Client {
	c := &Client{
		port:    port,
		timeout: 200 * time.Millisecond,
		backoff: 10 * time.Millisecond,
		rx:      protocol.NewFifoBuffer(protocol.MessageMax),
		out:     protocol.NewScratchOutput(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromConfig returns a client configured from the serial section.
func FromConfig(port serial.Port, sc config.SerialConfig) *Client {
	return New(port,
		WithCRC(sc.CRC),
		WithTimeout(sc.ReadTimeout()),
		WithRetry(sc.Retries, sc.RetryDelay()),
	)
}

// Close closes the port.
func (c *Client) Close() error {
	return c.port.Close()
}

// WriteVP implements dgus.Memory.
func (c *Client) WriteVP(addr uint16, buf []byte) error {
	return c.WriteVPContext(context.Background(), addr, buf)
}

// ReadVP implements dgus.Memory.
func (c *Client) ReadVP(addr uint16, buf []byte) error {
	return c.ReadVPContext(context.Background(), addr, buf)
}

// WriteVPContext stores buf at addr. The protocol moves whole words, so a
// trailing odd byte is merged with the current low byte of its word.
func (c *Client) WriteVPContext(ctx context.Context, addr uint16, buf []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(buf) >= 2 {
		n := len(buf) &^ 1
		if n > protocol.MaxWriteBytes {
			n = protocol.MaxWriteBytes
		}
		if err := c.write(ctx, addr, buf[:n]); err != nil {
			return err
		}
		addr += uint16(n / 2)
		buf = buf[n:]
	}
	if len(buf) == 0 {
		return nil
	}

	var word [2]byte
	if err := c.read(ctx, addr, word[:]); err != nil {
		return errors.Wrapf(err, "merge odd byte at %#04x", addr)
	}
	word[0] = buf[0]
	return c.write(ctx, addr, word[:])
}

// ReadVPContext fills buf from addr.
func (c *Client) ReadVPContext(ctx context.Context, addr uint16, buf []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(buf) > 0 {
		n := len(buf)
		if n > 2*protocol.MaxReadWords {
			n = 2 * protocol.MaxReadWords
		}
		if err := c.read(ctx, addr, buf[:n]); err != nil {
			return err
		}
		addr += uint16((n + 1) / 2)
		buf = buf[n:]
	}
	return nil
}

func (c *Client) write(ctx context.Context, addr uint16, data []byte) error {
	c.out.Reset()
	if err := protocol.EncodeWriteVP(c.out, addr, data, c.crc); err != nil {
		return err
	}
	_, err := c.exchange(ctx, func(f protocol.Frame) bool {
		return f.Cmd == protocol.CmdWriteVP && f.Ack
	})
	return errors.Wrapf(err, "write vp %#04x", addr)
}

// read fetches ceil(len(dst)/2) words and copies the first len(dst) bytes.
func (c *Client) read(ctx context.Context, addr uint16, dst []byte) error {
	words := (len(dst) + 1) / 2
	c.out.Reset()
	if err := protocol.EncodeReadVP(c.out, addr, words, c.crc); err != nil {
		return err
	}
	f, err := c.exchange(ctx, func(f protocol.Frame) bool {
		return f.Cmd == protocol.CmdReadVP && f.Data != nil
	})
	if err != nil {
		return errors.Wrapf(err, "read vp %#04x", addr)
	}
	if f.Addr != addr || int(f.Words) != words {
		return errors.Wrapf(ErrUnexpectedReply, "read vp %#04x: got %#04x x%d", addr, f.Addr, f.Words)
	}
	copy(dst, f.Data)
	return nil
}

// exchange sends the request in c.out and waits for a reply accepted by
// match, retrying on timeouts and corrupted replies.
func (c *Client) exchange(ctx context.Context, match func(protocol.Frame) bool) (protocol.Frame, error) {
	req := c.out.Result()
	var reply protocol.Frame

	b := retry.WithMaxRetries(c.retries, retry.NewFibonacci(c.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		f, err := c.roundTrip(ctx, req, match)
		if err != nil {
			if errors.Is(err, ErrTimeout) || errors.Is(err, protocol.ErrBadCRC) {
				return retry.RetryableError(err)
			}
			return err
		}
		reply = f
		return nil
	})
	return reply, err
}

func (c *Client) roundTrip(ctx context.Context, req []byte, match func(protocol.Frame) bool) (protocol.Frame, error) {
	// a reply to an earlier, abandoned request must not be taken for ours
	if err := c.port.Flush(); err != nil {
		return protocol.Frame{}, errors.Wrap(err, "flush")
	}
	c.rx.Reset()

	if _, err := c.port.Write(req); err != nil {
		return protocol.Frame{}, errors.Wrap(err, "send")
	}

	deadline := time.Now().Add(c.timeout)
	var lastErr error
	for {
		frames, err := c.dec.Feed(c.rx)
		if err != nil {
			lastErr = err
		}
		for _, f := range frames {
			if match(f) {
				return f, nil
			}
		}

		if err := ctx.Err(); err != nil {
			return protocol.Frame{}, err
		}
		if time.Now().After(deadline) {
			if lastErr != nil {
				return protocol.Frame{}, lastErr
			}
			return protocol.Frame{}, ErrTimeout
		}

		n, err := c.port.Read(c.buf[:])
		if n > 0 {
			c.rx.Write(c.buf[:n])
			continue
		}
		if err != nil && err != io.EOF {
			return protocol.Frame{}, errors.Wrap(err, "receive")
		}
		time.Sleep(time.Millisecond)
	}
}
