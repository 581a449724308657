package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/trade-trigger/internal/config"
	"github.com/zhouzirui/trade-trigger/internal/metrics"
	"github.com/zhouzirui/trade-trigger/internal/service/messaging"
	"github.com/zhouzirui/trade-trigger/internal/service/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	once := flag.Bool("once", false, "send a single message and exit")
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("warning: failed to load %s: %v", *envFile, err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := messaging.NewClient(cfg.Sender.BaseURL, cfg.Sender.Payload(), cfg.Sender.Timeout)
	if err != nil {
		log.Fatalf("failed to build messaging client: %v", err)
	}
	reporter := messaging.NewReporter(os.Stdout)

	schedule, description, err := buildSchedule(cfg.Schedule)
	if err != nil {
		log.Fatalf("invalid schedule: %v", err)
	}

	if cfg.Metrics.Enabled() {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
				log.Printf("[metrics] server error: %v", err)
			}
		}()
	}

	s := scheduler.New(client, reporter, schedule)

	if *once {
		s.RunOnce(ctx)
		return
	}

	log.Printf("posting to %s %s", client.Endpoint(), description)
	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("scheduler stopped: %v", err)
	}
	log.Println("shutting down")
}

func buildSchedule(cfg config.ScheduleConfig) (scheduler.Schedule, string, error) {
	if cfg.Cron != "" {
		c, err := scheduler.NewCron(cfg.Cron)
		if err != nil {
			return nil, "", err
		}
		return c, "on cron " + cfg.Cron, nil
	}
	return scheduler.Interval(cfg.Interval), "every " + cfg.Interval.Round(time.Second).String(), nil
}
