package workerproc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"resume-builder/internal/queue"
)

func TestParseMessage(t *testing.T) {
	body, err := queue.EncodeMessage(queue.Message{Type: "feedback.submitted", ID: "fb-1", RequestID: "req-1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	tests := []struct {
		name    string
		body    string
		wantErr any
	}{
		{name: "valid", body: string(body)},
		{name: "empty", body: "  ", wantErr: ErrEmptyBody{}},
		{name: "bad json", body: "{bad", wantErr: ErrDecode{}},
		{name: "missing type", body: `{"id":"x"}`, wantErr: ErrDecode{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, meta, err := ParseMessage(tt.body)
			switch tt.wantErr.(type) {
			case nil:
				if err != nil || msg.ID != "fb-1" || meta.BodySHA == "" {
					t.Fatalf("unexpected result %+v %+v %v", msg, meta, err)
				}
			case ErrEmptyBody:
				var target ErrEmptyBody
				if !errors.As(err, &target) {
					t.Fatalf("expected ErrEmptyBody, got %v", err)
				}
			case ErrDecode:
				var target ErrDecode
				if !errors.As(err, &target) {
					t.Fatalf("expected ErrDecode, got %v", err)
				}
			}
		})
	}
}

func TestDispatch(t *testing.T) {
	d := NewDispatcher()
	var seen []string
	d.Handle("ok", func(_ context.Context, msg queue.Message) error {
		seen = append(seen, msg.ID)
		return nil
	})
	d.Handle("flaky", func(context.Context, queue.Message) error {
		return errors.New("db down")
	})
	d.Handle("bad", func(context.Context, queue.Message) error {
		return fmt.Errorf("%w: no payload", queue.ErrInvalidMessage)
	})

	if err := d.Dispatch(context.Background(), queue.Message{Type: "ok", ID: "1"}); err != nil || len(seen) != 1 {
		t.Fatalf("expected handled, got %v", err)
	}
	err := d.Dispatch(context.Background(), queue.Message{Type: "flaky", ID: "2"})
	if !Retryable(err) {
		t.Fatalf("handler failures must be retryable, got %v", err)
	}
	err = d.Dispatch(context.Background(), queue.Message{Type: "bad", ID: "3"})
	if Retryable(err) || !errors.Is(err, queue.ErrInvalidMessage) {
		t.Fatalf("invalid payloads must not be retried, got %v", err)
	}
	var unknown ErrUnknownType
	if err := d.Dispatch(context.Background(), queue.Message{Type: "nope", ID: "4"}); !errors.As(err, &unknown) || Retryable(err) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}
