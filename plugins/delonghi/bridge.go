package delonghi

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/delonghi-comfort/comfortd/internal/mqtt"
)

// Bridge mirrors the appliance onto an MQTT broker: state snapshots are
// published retained on a poll interval, and simple set topics accept
// commands.
type Bridge struct {
	client *Client
	broker *mqtt.Client
	prefix string
	every  time.Duration
}

func NewBridge(client *Client, broker *mqtt.Client, topicPrefix string, pollInterval time.Duration) *Bridge {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &Bridge{
		client: client,
		broker: broker,
		prefix: strings.TrimSuffix(topicPrefix, "/"),
		every:  pollInterval,
	}
}

// Run subscribes the command topics and polls until the context ends.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.subscribeCommands(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(b.every)
	defer ticker.Stop()

	b.publishState(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.publishState(ctx)
		}
	}
}

func (b *Bridge) publishState(ctx context.Context) {
	state, err := b.client.State(ctx)
	if err != nil {
		log.Printf("bridge: read state: %v", err)
		return
	}
	payload, err := json.Marshal(state)
	if err != nil {
		log.Printf("bridge: encode state: %v", err)
		return
	}
	if err := b.broker.Publish(b.prefix+"/state", payload, true); err != nil {
		log.Printf("bridge: publish state: %v", err)
	}
}

func (b *Bridge) subscribeCommands(ctx context.Context) error {
	commands := map[string]func(context.Context, string) error{
		"status": func(ctx context.Context, payload string) error {
			status, err := StatusFromName(payload)
			if err != nil {
				return err
			}
			_, err = b.client.SetStatus(ctx, status)
			return err
		},
		"humidity": func(ctx context.Context, payload string) error {
			value, err := strconv.Atoi(payload)
			if err != nil {
				return err
			}
			_, err = b.client.SetHumidity(ctx, value)
			return err
		},
		"mode": func(ctx context.Context, payload string) error {
			mode, err := ModeFromName(payload)
			if err != nil {
				return err
			}
			_, err = b.client.SetMode(ctx, mode)
			return err
		},
		"swing": func(ctx context.Context, payload string) error {
			state, err := OffOnFromName(payload)
			if err != nil {
				return err
			}
			_, err = b.client.SetSwing(ctx, state)
			return err
		},
		"eco": func(ctx context.Context, payload string) error {
			state, err := OffOnFromName(payload)
			if err != nil {
				return err
			}
			_, err = b.client.SetEco(ctx, state)
			return err
		},
	}

	for name, apply := range commands {
		topic := b.prefix + "/set/" + name
		apply := apply
		err := b.broker.Subscribe(topic, func(payload []byte) {
			cmdCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			value := strings.TrimSpace(string(payload))
			if err := apply(cmdCtx, value); err != nil {
				log.Printf("bridge: command %s %q: %v", topic, value, err)
				return
			}
			// Refresh the retained state once the cache window has
			// passed so subscribers see the new value.
			b.publishState(cmdCtx)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
