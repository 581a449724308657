package scheduler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/zhouzirui/trade-trigger/internal/model/messaging"
	"github.com/zhouzirui/trade-trigger/internal/service/messaging"
)

type fakeSender struct {
	events *[]string
	errs   []error
	calls  int
}

func (f *fakeSender) Send(context.Context) (*messaging.Result, error) {
	*f.events = append(*f.events, "send")
	var err error
	if f.calls < len(f.errs) {
		err = f.errs[f.calls]
	}
	f.calls++
	if err != nil {
		return nil, err
	}
	return &messaging.Result{StatusCode: 200}, nil
}

type fakeReporter struct {
	errs []error
}

func (f *fakeReporter) Report(_ *messaging.Result, err error) string {
	f.errs = append(f.errs, err)
	return "success"
}

func TestRunAlternatesSendAndWait(t *testing.T) {
	var events []string
	sender := &fakeSender{
		events: &events,
		errs: []error{
			nil,
			&messaging.HTTPError{StatusCode: 500, Body: "boom"},
			&messaging.NetworkError{Err: errors.New("refused")},
		},
	}
	reporter := &fakeReporter{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var waits []time.Duration
	s := New(sender, reporter, Interval(time.Hour))
	s.sleep = func(ctx context.Context, d time.Duration) error {
		events = append(events, "wait")
		waits = append(waits, d)
		if len(waits) == 3 {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	err := s.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, []string{"send", "wait", "send", "wait", "send", "wait"}, events)
	assert.Equal(t, []time.Duration{time.Hour, time.Hour, time.Hour}, waits)
	require.Len(t, reporter.errs, 3)
	assert.NoError(t, reporter.errs[0])
	assert.Error(t, reporter.errs[1])
	assert.Error(t, reporter.errs[2])
}

func TestRunOnceDoesNotWait(t *testing.T) {
	var events []string
	s := New(&fakeSender{events: &events}, &fakeReporter{}, Interval(time.Hour))
	s.sleep = func(context.Context, time.Duration) error {
		t.Fatal("RunOnce must not wait")
		return nil
	}

	s.RunOnce(context.Background())
	assert.Equal(t, []string{"send"}, events)
}

func TestCronNext(t *testing.T) {
	c, err := NewCron("0 * * * *")
	require.NoError(t, err)

	now := time.Date(2026, 10, 19, 14, 20, 30, 0, time.UTC)
	wait, err := c.Next(now)
	require.NoError(t, err)
	assert.Equal(t, 39*time.Minute+30*time.Second, wait)
}

func TestCronEveryMinute(t *testing.T) {
	c, err := NewCron("* * * * *")
	require.NoError(t, err)

	now := time.Date(2026, 10, 19, 14, 20, 0, 0, time.UTC)
	wait, err := c.Next(now)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, wait)
}

func TestNewCronInvalid(t *testing.T) {
	_, err := NewCron("every hour")
	assert.Error(t, err)
}

func TestSleepContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}

func TestRunOnceReportsEndpointOutcomes(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"success", http.StatusOK, `{"id":"m1"}`, "Message created: 200"},
		{"server error", http.StatusInternalServerError, "agent crashed", "HTTP error: 500 agent crashed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client, err := messaging.NewClient(srv.URL, model.DefaultPayload(), 10*time.Second)
			require.NoError(t, err)

			var out bytes.Buffer
			New(client, messaging.NewReporter(&out), Interval(time.Hour)).RunOnce(context.Background())
			assert.Contains(t, out.String(), tc.want)
		})
	}
}
