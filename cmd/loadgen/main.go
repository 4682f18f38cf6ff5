// Command loadgen publishes synthetic message events to NATS at a fixed
// rate, for load-testing the moderation service. A fraction of the events
// carry content that should trip common filters, so verdict throughput can
// be observed alongside clean-path throughput.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/warden/mod-bot/internal/messaging"
	"github.com/warden/mod-bot/internal/model"
)

var cleanSamples = []string{
	"hey, anyone up for a game tonight?",
	"the patch notes are out, big nerf to mages",
	"good morning everyone",
	"check the pinned message for the schedule",
}

var dirtySamples = []string{
	"free nitro at https://scam.example/win",
	"join discord.gg/freestuff now!!",
	"🎉🎉🎉🎉🎉🎉🎉🎉🎉🎉🎉🎉",
	"h́̿̂e̚͠ͅ comes",
}

func main() {
	natsURL := flag.String("nats", "nats://localhost:4222", "NATS server URL")
	rate := flag.Int("rate", 100, "events per second")
	duration := flag.Duration("duration", 30*time.Second, "how long to run")
	guilds := flag.Int("guilds", 4, "number of distinct guild ids")
	users := flag.Int("users", 50, "number of distinct user ids")
	dirty := flag.Float64("dirty", 0.1, "fraction of events with filterable content")
	flag.Parse()

	natsConfig := messaging.DefaultNATSConfig()
	natsConfig.URL = *natsURL
	natsConfig.Name = "warden-loadgen"
	natsClient, err := messaging.NewNATSClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}
	defer natsClient.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ticker := time.NewTicker(time.Second / time.Duration(*rate))
	defer ticker.Stop()
	deadline := time.After(*duration)

	sent := 0
	start := time.Now()
	for {
		select {
		case <-deadline:
			elapsed := time.Since(start)
			fmt.Printf("sent %d events in %s (%.0f/s)\n", sent, elapsed.Round(time.Millisecond), float64(sent)/elapsed.Seconds())
			return
		case <-ticker.C:
			content := cleanSamples[rng.Intn(len(cleanSamples))]
			if rng.Float64() < *dirty {
				content = dirtySamples[rng.Intn(len(dirtySamples))]
			}

			guildID := fmt.Sprintf("%d", 1000+rng.Intn(*guilds))
			event := model.MessageEvent{
				GuildID:   guildID,
				ChannelID: "1",
				MessageID: fmt.Sprintf("%d", sent+1),
				AuthorID:  fmt.Sprintf("%d", 1+rng.Intn(*users)),
				Content:   content,
				Timestamp: time.Now().UnixMilli(),
			}
			data, err := json.Marshal(&event)
			if err != nil {
				log.Fatalf("marshal event: %v", err)
			}
			if err := natsClient.PublishMessageEvent(guildID, data); err != nil {
				log.Printf("[loadgen] publish failed: %v", err)
				continue
			}
			sent++
		}
	}
}
