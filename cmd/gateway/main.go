package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/warden/mod-bot/internal/dispatch"
	"github.com/warden/mod-bot/internal/gateway"
	"github.com/warden/mod-bot/internal/messaging"
	"github.com/warden/mod-bot/internal/settings"
)

const reconnectWait = 2 * time.Second

func main() {
	log.Println("Starting warden gateway service...")

	s, err := settings.Load("gateway")
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}
	if s.GatewayURL == "" {
		log.Fatalf("GATEWAY_URL is required")
	}

	// NATS setup.
	natsConfig := messaging.DefaultNATSConfig()
	natsConfig.URL = s.NATSURL
	natsConfig.Name = "warden-gateway"
	natsClient, err := messaging.NewNATSClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	// The current platform connection, swapped on reconnect. Action
	// handlers fire from NATS goroutines while the read loop owns dialing.
	var mu sync.Mutex
	var client *gateway.Client

	current := func() *gateway.Client {
		mu.Lock()
		defer mu.Unlock()
		return client
	}

	writeCommand := func(cmd gateway.Command) {
		c := current()
		if c == nil {
			log.Printf("[gateway] dropping %s command, not connected", cmd.Op)
			return
		}
		if err := c.WriteCommand(cmd); err != nil {
			log.Printf("[gateway] %s command failed: %v", cmd.Op, err)
		}
	}

	err = natsClient.SubscribeActionDelete(func(data []byte) {
		var p dispatch.DeletePayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Printf("[gateway] failed to unmarshal delete payload: %v", err)
			return
		}
		writeCommand(gateway.Command{
			Op:        gateway.OpDeleteMessage,
			ChannelID: p.ChannelID,
			MessageID: p.MessageID,
		})
	})
	if err != nil {
		log.Fatalf("failed to subscribe to delete actions: %v", err)
	}

	err = natsClient.SubscribeActionSend(func(data []byte) {
		var p dispatch.SendPayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Printf("[gateway] failed to unmarshal send payload: %v", err)
			return
		}
		writeCommand(gateway.Command{
			Op:        gateway.OpSendMessage,
			ChannelID: p.ChannelID,
			Content:   p.Content,
		})
	})
	if err != nil {
		log.Fatalf("failed to subscribe to send actions: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())

	// Read loop with reconnect.
	go func() {
		for ctx.Err() == nil {
			dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			c, err := gateway.Dial(dialCtx, s.GatewayURL, s.GatewayToken)
			cancel()
			if err != nil {
				log.Printf("[gateway] connect failed, retrying in %s: %v", reconnectWait, err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(reconnectWait):
				}
				continue
			}
			log.Printf("[gateway] connected to %s", s.GatewayURL)

			mu.Lock()
			client = c
			mu.Unlock()

			for {
				frame, err := c.ReadFrame()
				if err != nil {
					log.Printf("[gateway] connection lost: %v", err)
					break
				}
				event, err := gateway.Normalize(frame)
				if err != nil {
					log.Printf("[gateway] bad frame: %v", err)
					continue
				}
				if event == nil {
					continue
				}
				data, err := json.Marshal(event)
				if err != nil {
					log.Printf("[gateway] failed to marshal message event: %v", err)
					continue
				}
				if err := natsClient.PublishMessageEvent(event.GuildID, data); err != nil {
					log.Printf("[gateway] failed to publish message event: %v", err)
				}
			}

			mu.Lock()
			client = nil
			mu.Unlock()
			c.Close()
		}
	}()

	log.Printf("warden gateway service running")
	log.Printf("  nats_url:    %s", s.NATSURL)
	log.Printf("  gateway_url: %s", s.GatewayURL)

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	stop()
	if c := current(); c != nil {
		c.Close()
	}
	natsClient.Close()
}
