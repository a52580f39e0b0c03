package mqtt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/addressbook/internal/infrastructure/config"
)

// Client is a publish-only broker connection for address book events.
//
// The broker learns about the service through a retained message on
// addressbook/system/status: "online" after every (re)connect, "offline"
// on Close, and the same "offline" as Last Will if the link drops. Paho
// reconnects in the background; IsConnected reflects the current link.
// Methods are safe for concurrent use.
type Client struct {
	paho     pahomqtt.Client
	clientID string
	qos      byte

	up atomic.Bool

	hookMu sync.Mutex
	onUp   func()
	onDown func(err error)
}

// Logger is the logging surface this package needs. *logging.Logger and
// *slog.Logger both satisfy it.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// Connect dials the broker described by cfg and waits for the first
// session. It returns ErrConnectionFailed on timeout or refusal.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{
		clientID: cfg.Broker.ClientID,
		qos:      byte(cfg.QoS),
	}

	opts := buildClientOptions(cfg)
	configureLWT(opts, c.clientID)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.linkUp() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.linkDown(err) })

	c.paho = pahomqtt.NewClient(opts)
	if err := await(c.paho.Connect(), defaultConnectTimeout); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// linkUp runs on a paho goroutine and may not have fired yet.
	c.up.Store(true)
	return c, nil
}

// await waits for token and returns its error, or a timeout error.
func await(token pahomqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("timeout after %v", timeout)
	}
	return token.Error()
}

func (c *Client) linkUp() {
	c.up.Store(true)
	// Best effort: a failed announcement is repaired by the next reconnect.
	_ = c.announce(statusOnline, "")

	c.hookMu.Lock()
	hook := c.onUp
	c.hookMu.Unlock()
	if hook != nil {
		hook()
	}
}

func (c *Client) linkDown(err error) {
	c.up.Store(false)

	c.hookMu.Lock()
	hook := c.onDown
	c.hookMu.Unlock()
	if hook != nil {
		hook(err)
	}
}

// announce publishes the retained service status through Publish.
func (c *Client) announce(status, reason string) error {
	return c.Publish(Topics{}.SystemStatus(), statusPayload(status, c.clientID, reason), c.qos, true)
}

// Close announces a graceful shutdown and disconnects. Closing a nil or
// already closed client is a no-op.
func (c *Client) Close() error {
	if c == nil || c.paho == nil {
		return nil
	}
	if c.IsConnected() {
		_ = c.announce(statusOffline, reasonGraceful)
	}
	c.up.Store(false)
	c.paho.Disconnect(defaultDisconnectQuiesce)
	return nil
}

// HealthCheck returns ErrNotConnected while the broker link is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports whether the broker link is currently up.
func (c *Client) IsConnected() bool {
	if c == nil || c.paho == nil {
		return false
	}
	return c.up.Load() && c.paho.IsConnected()
}

// SetOnConnect registers fn to run after the initial connect and after
// every reconnect.
func (c *Client) SetOnConnect(fn func()) {
	c.hookMu.Lock()
	c.onUp = fn
	c.hookMu.Unlock()
}

// SetOnDisconnect registers fn to run when the link is lost.
func (c *Client) SetOnDisconnect(fn func(err error)) {
	c.hookMu.Lock()
	c.onDown = fn
	c.hookMu.Unlock()
}
