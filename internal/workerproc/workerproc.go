package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"resume-builder/internal/queue"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a malformed envelope.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrUnknownType indicates no handler is registered for the envelope type.
type ErrUnknownType struct {
	Type      string
	RequestID string
}

func (e ErrUnknownType) Error() string { return "no handler for message type " + e.Type }

// ErrProcess indicates the handler failed after the envelope was parsed.
// These are the only failures worth redelivering.
type ErrProcess struct {
	Type      string
	ID        string
	RequestID string
	Err       error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process " + e.Type
	}
	return "process " + e.Type + ": " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}
	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	return msg, meta, nil
}

// HandlerFunc processes one decoded envelope.
type HandlerFunc func(ctx context.Context, msg queue.Message) error

// Dispatcher routes envelopes to handlers by type.
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

// Handle registers fn for msgType, replacing any previous handler.
func (d *Dispatcher) Handle(msgType string, fn HandlerFunc) {
	d.handlers[msgType] = fn
}

// Dispatch runs the handler for msg. Handler errors that only a different
// payload could fix (an invalid message) are returned unwrapped so the
// caller can drop the message.
func (d *Dispatcher) Dispatch(ctx context.Context, msg queue.Message) error {
	fn, ok := d.handlers[msg.Type]
	if !ok {
		return ErrUnknownType{Type: msg.Type, RequestID: msg.RequestID}
	}
	if err := fn(ctx, msg); err != nil {
		if errors.Is(err, queue.ErrInvalidMessage) {
			return ErrDecode{Err: err}
		}
		return ErrProcess{Type: msg.Type, ID: msg.ID, RequestID: msg.RequestID, Err: err}
	}
	return nil
}

// Retryable reports whether the message should stay on the queue for
// redelivery.
func Retryable(err error) bool {
	var proc ErrProcess
	return errors.As(err, &proc)
}
