package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/warden/mod-bot/internal/config"
	"github.com/warden/mod-bot/internal/dispatch"
	"github.com/warden/mod-bot/internal/engine"
	"github.com/warden/mod-bot/internal/messaging"
	"github.com/warden/mod-bot/internal/metrics"
	"github.com/warden/mod-bot/internal/model"
	"github.com/warden/mod-bot/internal/quarantine"
	"github.com/warden/mod-bot/internal/settings"
	"github.com/warden/mod-bot/internal/spam"
)

func main() {
	log.Println("Starting warden moderation service...")

	s, err := settings.Load("moderator")
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Guild config source.
	var source config.Source
	var closeSource func()
	switch s.ConfigSource {
	case "postgres":
		openCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pg, err := config.OpenPG(openCtx, s.PostgresDSN)
		cancel()
		if err != nil {
			log.Fatalf("failed to open Postgres config source: %v", err)
		}
		source = pg
		closeSource = func() { pg.DB.Close() }
	default:
		source = config.DirSource{Dir: s.ConfigDir}
		closeSource = func() {}
	}

	loadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	snapshot, err := source.Load(loadCtx)
	cancel()
	if err != nil {
		log.Fatalf("failed to load guild configs: %v", err)
	}
	store := config.NewStore(snapshot)

	// Redis setup.
	rdb := redis.NewClient(&redis.Options{Addr: s.RedisAddr})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	cancel()
	quarStore := quarantine.NewStore(rdb)

	// NATS setup.
	natsConfig := messaging.DefaultNATSConfig()
	natsConfig.URL = s.NATSURL
	natsConfig.Name = "warden-moderator"
	natsClient, err := messaging.NewNATSClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	tracker := spam.NewTracker()
	pipeline := engine.NewPipeline(store, tracker)

	dispatcher := dispatch.New(dispatch.NewNATSExecutor(natsClient), func(result model.ActionResult) {
		data, err := json.Marshal(result)
		if err != nil {
			log.Printf("[moderator] failed to marshal action result: %v", err)
			return
		}
		if err := natsClient.PublishActionResult(result.RequestID, data); err != nil {
			log.Printf("[moderator] failed to publish action result: %v", err)
		}
	})

	ctx, stop := context.WithCancel(context.Background())

	go dispatcher.Run(ctx)
	go config.StartReload(ctx, store, source, s.ReloadInterval)

	// Periodically drop spam windows that went idle.
	go func() {
		ticker := time.NewTicker(s.ReapInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reaped := tracker.Reap(time.Now(), s.SpamIdleTTL)
				metrics.SpamKeysActive.Set(float64(tracker.ActiveKeys()))
				if reaped > 0 {
					log.Printf("[moderator] reaped %d idle spam window(s)", reaped)
				}
			}
		}
	}()

	// Subscribe to message events from the gateway.
	err = natsClient.SubscribeMessageEvents(func(data []byte) {
		var event model.MessageEvent
		if err := json.Unmarshal(data, &event); err != nil {
			log.Printf("[moderator] failed to unmarshal message event: %v", err)
			return
		}
		msg, err := event.Context()
		if err != nil {
			log.Printf("[moderator] rejected message event: %v", err)
			return
		}

		requests, verdict := pipeline.OnMessage(msg)
		if !verdict.Matched {
			return
		}

		log.Printf("[moderator] MATCH guild=%s user=%s filter=%s rule=%s reason=%q",
			msg.GuildID, msg.AuthorID, verdict.Filter, verdict.Rule, verdict.Reason)
		dispatcher.Enqueue(requests)

		notice, err := json.Marshal(model.OffenderNotice{
			GuildID: msg.GuildID.String(),
			UserID:  msg.AuthorID.String(),
			Filter:  verdict.Filter,
			Rule:    verdict.Rule,
			Reason:  verdict.Reason,
		})
		if err != nil {
			log.Printf("[moderator] failed to marshal offender notice: %v", err)
			return
		}
		if err := natsClient.PublishOffenderNotice(notice); err != nil {
			log.Printf("[moderator] failed to publish offender notice: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("failed to subscribe to message events: %v", err)
	}

	// Escalate repeat offenders into temporary mutes.
	err = natsClient.SubscribeOffenderNotices(func(data []byte) {
		var notice model.OffenderNotice
		if err := json.Unmarshal(data, &notice); err != nil {
			log.Printf("[quarantine] failed to unmarshal offender notice: %v", err)
			return
		}
		guildID, err := model.ParseSnowflake(notice.GuildID)
		if err != nil {
			return
		}
		userID, err := model.ParseSnowflake(notice.UserID)
		if err != nil {
			return
		}

		opCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		muted, duration, err := quarStore.RecordOffense(opCtx, guildID, userID, notice.Reason)
		if err != nil {
			// Fail open: a Redis outage must not block moderation.
			log.Printf("[quarantine] record offense for guild=%s user=%s: %v", notice.GuildID, notice.UserID, err)
			return
		}
		if muted {
			log.Printf("[quarantine] muted guild=%s user=%s for %s (reason=%q)",
				notice.GuildID, notice.UserID, duration, notice.Reason)
		}
	})
	if err != nil {
		log.Fatalf("failed to subscribe to offender notices: %v", err)
	}

	// Metrics endpoint.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		if err := http.ListenAndServe(s.MetricsAddr, mux); err != nil {
			log.Printf("[moderator] metrics server: %v", err)
		}
	}()

	log.Printf("warden moderation service running")
	log.Printf("  nats_url:      %s", s.NATSURL)
	log.Printf("  redis_addr:    %s", s.RedisAddr)
	log.Printf("  config_source: %s", s.ConfigSource)
	log.Printf("  metrics_addr:  %s", s.MetricsAddr)
	log.Printf("  guilds:        %d", len(snapshot.Guilds))

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	stop()
	natsClient.Close()
	rdb.Close()
	closeSource()
}
