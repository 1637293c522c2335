// Package mqtt wraps the paho client behind a small publish/subscribe
// surface with automatic reconnect and resubscription.
package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

type Config struct {
	// BrokerURL is a full broker address, e.g. tcp://mosquitto:1883.
	BrokerURL string
	Username  string
	Password  string
}

// Client is a thin connection wrapper. Subscriptions are tracked so
// they survive broker reconnects.
type Client struct {
	client paho.Client

	mu   sync.Mutex
	subs map[string]func([]byte)
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BrokerURL == "" {
		return nil, fmt.Errorf("mqtt broker url is required")
	}

	c := &Client{subs: make(map[string]func([]byte))}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetClientID("comfortd-" + uuid.NewString())
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.OnConnect = func(_ paho.Client) {
		c.resubscribeAll()
	}

	c.client = paho.NewClient(opts)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.BrokerURL, token.Error())
	}
	return c, nil
}

// Publish sends a payload at QoS 0.
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	if token := c.client.Publish(topic, 0, retained, payload); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Subscribe registers a callback for a topic. One callback per topic;
// subscribing again replaces the previous one.
func (c *Client) Subscribe(topic string, cb func([]byte)) error {
	c.mu.Lock()
	c.subs[topic] = cb
	c.mu.Unlock()

	handler := func(_ paho.Client, msg paho.Message) {
		c.mu.Lock()
		registered := c.subs[msg.Topic()]
		c.mu.Unlock()
		if registered != nil {
			registered(msg.Payload())
		}
	}
	if token := c.client.Subscribe(topic, 0, handler); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (c *Client) Close() {
	c.client.Disconnect(250)
}

func (c *Client) resubscribeAll() {
	c.mu.Lock()
	topics := make([]string, 0, len(c.subs))
	for topic := range c.subs {
		topics = append(topics, topic)
	}
	c.mu.Unlock()

	for _, topic := range topics {
		c.client.Subscribe(topic, 0, func(_ paho.Client, msg paho.Message) {
			c.mu.Lock()
			registered := c.subs[msg.Topic()]
			c.mu.Unlock()
			if registered != nil {
				registered(msg.Payload())
			}
		})
	}
}
