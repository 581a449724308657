package main

import (
	"testing"
	"time"

	"github.com/zhouzirui/trade-trigger/internal/config"
	"github.com/zhouzirui/trade-trigger/internal/service/scheduler"
)

func TestBuildScheduleInterval(t *testing.T) {
	schedule, desc, err := buildSchedule(config.ScheduleConfig{Interval: time.Hour})
	if err != nil {
		t.Fatalf("buildSchedule err: %v", err)
	}
	if _, ok := schedule.(scheduler.Interval); !ok {
		t.Fatalf("expected Interval schedule, got %T", schedule)
	}
	if desc != "every 1h0m0s" {
		t.Fatalf("unexpected description: %s", desc)
	}
}

func TestBuildScheduleCron(t *testing.T) {
	schedule, desc, err := buildSchedule(config.ScheduleConfig{Interval: time.Hour, Cron: "* * * * *"})
	if err != nil {
		t.Fatalf("buildSchedule err: %v", err)
	}
	if _, ok := schedule.(*scheduler.Cron); !ok {
		t.Fatalf("expected Cron schedule, got %T", schedule)
	}
	if desc != "on cron * * * * *" {
		t.Fatalf("unexpected description: %s", desc)
	}
}

func TestBuildScheduleInvalidCron(t *testing.T) {
	if _, _, err := buildSchedule(config.ScheduleConfig{Cron: "nope"}); err == nil {
		t.Fatal("expected error for invalid cron")
	}
}
