package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/warden/mod-bot/internal/model"
)

type fakeExecutor struct {
	mu      sync.Mutex
	deletes []model.Snowflake
	sends   map[model.Snowflake][]string
	fail    error
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{sends: make(map[model.Snowflake][]string)}
}

func (f *fakeExecutor) DeleteMessage(_ context.Context, _, messageID model.Snowflake) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.deletes = append(f.deletes, messageID)
	return nil
}

func (f *fakeExecutor) SendMessage(_ context.Context, channelID model.Snowflake, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sends[channelID] = append(f.sends[channelID], content)
	return nil
}

func TestHandle_Delete(t *testing.T) {
	exec := newFakeExecutor()
	var results []model.ActionResult
	d := New(exec, func(r model.ActionResult) { results = append(results, r) })

	d.handle(context.Background(), model.ActionRequest{
		ID:        "req-1",
		Kind:      model.ActionDelete,
		ChannelID: 10,
		MessageID: 100,
	})

	if len(exec.deletes) != 1 || exec.deletes[0] != 100 {
		t.Errorf("deletes = %v", exec.deletes)
	}
	if len(results) != 1 || !results[0].OK() || results[0].RequestID != "req-1" {
		t.Errorf("results = %+v", results)
	}
}

func TestHandle_SendImmediate(t *testing.T) {
	exec := newFakeExecutor()
	d := New(exec, nil)

	d.handle(context.Background(), model.ActionRequest{
		ID:        "req-1",
		Kind:      model.ActionSendMessage,
		ChannelID: 10,
		Content:   "hello",
	})

	if got := exec.sends[10]; len(got) != 1 || got[0] != "hello" {
		t.Errorf("sends = %v", exec.sends)
	}
}

func TestHandle_SendBatched(t *testing.T) {
	exec := newFakeExecutor()
	d := New(exec, nil)

	for _, content := range []string{"one", "two"} {
		d.handle(context.Background(), model.ActionRequest{
			ID:        "req-" + content,
			Kind:      model.ActionSendMessage,
			ChannelID: 10,
			Content:   content,
			Batch:     true,
		})
	}
	if len(exec.sends) != 0 {
		t.Fatal("batched sends must not go out before a flush")
	}

	d.flush(context.Background())
	if got := exec.sends[10]; len(got) != 1 || got[0] != "one\n\ntwo" {
		t.Errorf("sends after flush = %v", exec.sends)
	}
}

func TestRun_FlushesPendingBatchOnShutdown(t *testing.T) {
	exec := newFakeExecutor()
	d := New(exec, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	d.Enqueue([]model.ActionRequest{{
		ID:        "req-1",
		Kind:      model.ActionSendMessage,
		ChannelID: 10,
		Content:   "pending",
		Batch:     true,
	}})

	// Wait for a worker to batch the request, then shut down before the
	// next flush tick.
	deadline := time.After(5 * time.Second)
	for {
		d.batch.mu.Lock()
		queued := len(d.batch.pending)
		d.batch.mu.Unlock()
		if queued > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("batched request never reached the batcher")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done

	if got := exec.sends[10]; len(got) != 1 || got[0] != "pending" {
		t.Errorf("sends after shutdown = %v", exec.sends)
	}
}

func TestHandle_ReportsFailure(t *testing.T) {
	exec := newFakeExecutor()
	exec.fail = errors.New("boom")
	var results []model.ActionResult
	d := New(exec, func(r model.ActionResult) { results = append(results, r) })

	d.handle(context.Background(), model.ActionRequest{
		ID:   "req-1",
		Kind: model.ActionDelete,
	})

	if len(results) != 1 || results[0].OK() {
		t.Fatalf("results = %+v, want failure", results)
	}
	if results[0].Error != "boom" {
		t.Errorf("error = %q", results[0].Error)
	}
}
