// Package rabbitmq publishes order events to the kitchen queue over AMQP.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	ErrPoolExhausted = errors.New("rabbitmq: no channel became available")
	ErrPoolClosed    = errors.New("rabbitmq: channel pool closed")
)

// Channel is the part of *amqp.Channel the pool and the publisher use.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// ChannelPool shares one connection between a fixed number of channels.
// amqp channels are not safe for concurrent publishing, so each publish
// borrows one and hands it back. The pool always holds size slots: a channel
// the broker closed is reopened when it is returned or borrowed, and kept in
// its slot until reopening succeeds.
type ChannelPool struct {
	conn      *amqp.Connection
	open      func() (Channel, error)
	channels  chan Channel
	mu        sync.Mutex
	closed    bool
	queueName string
}

func NewChannelPool(url, queueName string, size int) (*ChannelPool, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}

	open := func() (Channel, error) { return declareChannel(conn, queueName) }
	pool, err := newChannelPool(open, queueName, size)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	pool.conn = conn

	slog.Info("rabbitmq channel pool ready", "queue", queueName, "channels", cap(pool.channels))
	return pool, nil
}

func newChannelPool(open func() (Channel, error), queueName string, size int) (*ChannelPool, error) {
	if size < 1 {
		size = 1
	}
	pool := &ChannelPool{
		open:      open,
		channels:  make(chan Channel, size),
		queueName: queueName,
	}
	for i := 0; i < size; i++ {
		ch, err := open()
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("rabbitmq: create channel %d: %w", i, err)
		}
		pool.channels <- ch
	}
	return pool, nil
}

// declareChannel opens a channel and declares the durable queue on it.
func declareChannel(conn *amqp.Connection, queueName string) (Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue %q: %w", queueName, err)
	}
	return ch, nil
}

// Get borrows a channel, waiting until one is returned or ctx is done.
// A closed channel is reopened before it is handed out.
func (p *ChannelPool) Get(ctx context.Context) (Channel, error) {
	select {
	case ch, ok := <-p.channels:
		if !ok {
			return nil, ErrPoolClosed
		}
		if !ch.IsClosed() {
			return ch, nil
		}
		fresh, err := p.open()
		if err != nil {
			p.release(ch)
			return nil, fmt.Errorf("rabbitmq: reopen channel: %w", err)
		}
		return fresh, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrPoolExhausted, ctx.Err())
	}
}

// Put returns a borrowed channel. A channel closed while borrowed is replaced
// by a new one; if that fails the closed channel keeps the slot and the next
// Get retries.
func (p *ChannelPool) Put(ch Channel) {
	if ch == nil {
		return
	}
	if ch.IsClosed() {
		if fresh, err := p.open(); err == nil {
			ch = fresh
		} else {
			slog.Warn("rabbitmq channel reopen failed", "queue", p.queueName, "error", err)
		}
	}
	p.release(ch)
}

func (p *ChannelPool) release(ch Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = ch.Close()
		return
	}
	select {
	case p.channels <- ch:
	default:
		_ = ch.Close()
	}
}

func (p *ChannelPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true

	close(p.channels)
	for ch := range p.channels {
		_ = ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	slog.Info("rabbitmq channel pool closed", "queue", p.queueName)
}
