package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/annel0/dungeon-rooms/internal/eventbus"
	"github.com/annel0/dungeon-rooms/internal/generation"
)

const (
	defaultNATSURL = "nats://localhost:4222"
	timeFormat     = "15:04:05"
)

func main() {
	var (
		natsURL    = flag.String("url", defaultNATSURL, "NATS server URL")
		stream     = flag.String("stream", "ROOMS", "JetStream stream name")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		sources    = flag.String("sources", "", "Event sources filter (comma-separated)")
		limit      = flag.Int("limit", 0, "Stop after N events (0 = follow until Ctrl+C)")
	)
	flag.Parse()

	bus, err := eventbus.NewJetStreamBus(*natsURL, *stream, 0)
	if err != nil {
		log.Fatalf("❌ Failed to connect to NATS: %v", err)
	}
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tailEvents(ctx, bus, &TailOptions{
		EventTypes: parseStringList(*eventTypes),
		Sources:    parseStringList(*sources),
		Limit:      *limit,
	}); err != nil {
		log.Fatalf("❌ Tail failed: %v", err)
	}
}

type TailOptions struct {
	EventTypes []string
	Sources    []string
	Limit      int
}

// tailEvents выводит события генератора, пока не достигнут лимит или не пришёл сигнал
func tailEvents(ctx context.Context, bus eventbus.EventBus, opts *TailOptions) error {
	fmt.Printf("🎬 Tailing events (types: %v, limit: %d)\n", opts.EventTypes, opts.Limit)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var count int64
	sub, err := bus.Subscribe(ctx, eventbus.Filter{Types: opts.EventTypes, Sources: opts.Sources}, func(_ context.Context, ev *eventbus.Envelope) {
		printEvent(os.Stdout, ev)
		if n := atomic.AddInt64(&count, 1); opts.Limit > 0 && n >= int64(opts.Limit) {
			cancel()
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	<-ctx.Done()
	fmt.Printf("\n📊 Total events: %d\n", atomic.LoadInt64(&count))
	return nil
}

// printEvent выводит событие в читаемом формате
func printEvent(w *os.File, ev *eventbus.Envelope) {
	fmt.Fprintf(w, "[%s] %s [%s] %s\n", ev.Timestamp.Local().Format(timeFormat), ev.Source, ev.EventType, ev.ID)

	// Добавляем детали в зависимости от типа события
	switch ev.EventType {
	case eventbus.RoomGeneratedEvent:
		var out generation.Outcome
		if err := ev.Decode(&out); err != nil {
			fmt.Fprintf(w, "  ⚠️ bad payload: %v\n", err)
			return
		}
		fmt.Fprintf(w, "  Room: %s %s layer %d %v\n", out.Kind, out.Cell, out.Layer, out.Bounds)
		switch {
		case out.Feature != nil:
			fmt.Fprintf(w, "  Spawner: %s at %v\n", out.Feature.EntityKind, out.Feature.Pos)
		case out.Cancelled:
			fmt.Fprintln(w, "  Spawner: cancelled by hook")
		}
		for _, c := range out.Containers {
			if c.Skipped {
				fmt.Fprintf(w, "  Chest %v: empty candidate list\n", c.Pos)
				continue
			}
			fmt.Fprintf(w, "  Chest %v: %d writes from %d candidates\n", c.Pos, len(c.Writes), c.Candidates)
		}
	case eventbus.SpawnerCancelledEvent:
		var p generation.SpawnerCancelled
		if err := ev.Decode(&p); err != nil {
			fmt.Fprintf(w, "  ⚠️ bad payload: %v\n", err)
			return
		}
		fmt.Fprintf(w, "  Cancelled: %s (%s) %s layer %d\n", p.EntityKind, p.Cause, p.Cell, p.Layer)
	}
}

// parseStringList парсит строку с разделителями-запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
