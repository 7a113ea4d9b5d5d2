package broker

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryBroker is an in-process Broker used by tests and by
// internal/publisher's/internal/consumer's own unit tests, grounded on
// pkg/streaming/adapters/memory.Client's mutex+slice shape. It is NOT wired
// into any cmd/ binary: production always talks to NATSBroker.
type MemoryBroker struct {
	mu         sync.Mutex
	workQ      []*PulledMessage
	streamMu   sync.Mutex
	streamSubs []*memorySubscription
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{}
}

func (b *MemoryBroker) Healthy(ctx context.Context) bool { return true }
func (b *MemoryBroker) Close() error                     { return nil }

func (b *MemoryBroker) WorkQueueProducer() WorkQueueProducer {
	return &memoryWorkQueueProducer{broker: b}
}

func (b *MemoryBroker) WorkQueueConsumer(durableName string, ackWait time.Duration) (WorkQueueConsumer, error) {
	return &memoryWorkQueueConsumer{broker: b}, nil
}

func (b *MemoryBroker) StreamPublisher() StreamPublisher {
	return &memoryStreamPublisher{broker: b}
}

func (b *MemoryBroker) StreamSubscriber() StreamSubscriber {
	return &memoryStreamSubscriber{broker: b}
}

type memoryWorkQueueProducer struct {
	broker *MemoryBroker
}

// Publish appends msg to the in-memory queue. messageID is ignored: unlike
// NATSBroker, this queue does not deduplicate.
func (p *memoryWorkQueueProducer) Publish(ctx context.Context, msg *Message, messageID string) error {
	p.broker.mu.Lock()
	defer p.broker.mu.Unlock()

	cp := *msg
	p.broker.workQ = append(p.broker.workQ, &PulledMessage{
		Message: cp,
		Ack:     func() error { return nil },
		Nack:    func() error { return nil },
	})
	return nil
}

func (p *memoryWorkQueueProducer) Close() error { return nil }

type memoryWorkQueueConsumer struct {
	broker *MemoryBroker
}

func (c *memoryWorkQueueConsumer) Fetch(ctx context.Context, maxMessages int) ([]*PulledMessage, error) {
	if maxMessages <= 0 {
		maxMessages = 1
	}
	c.broker.mu.Lock()
	if len(c.broker.workQ) == 0 {
		c.broker.mu.Unlock()
		return nil, nil
	}
	n := maxMessages
	if n > len(c.broker.workQ) {
		n = len(c.broker.workQ)
	}
	out := c.broker.workQ[:n]
	c.broker.workQ = c.broker.workQ[n:]
	c.broker.mu.Unlock()
	return out, nil
}

func (c *memoryWorkQueueConsumer) Close() error { return nil }

type memoryStreamPublisher struct {
	broker *MemoryBroker
}

func (p *memoryStreamPublisher) Publish(ctx context.Context, msg *Message) error {
	p.broker.streamMu.Lock()
	defer p.broker.streamMu.Unlock()
	for _, sub := range p.broker.streamSubs {
		if subjectMatches(sub.pattern, msg.Subject) {
			cp := *msg
			select {
			case sub.ch <- &cp:
			default:
			}
		}
	}
	return nil
}

func (p *memoryStreamPublisher) Close() error { return nil }

type memoryStreamSubscriber struct {
	broker *MemoryBroker
}

func (s *memoryStreamSubscriber) Subscribe(ctx context.Context, pattern string) (StreamSubscription, error) {
	sub := &memorySubscription{
		broker:  s.broker,
		pattern: pattern,
		ch:      make(chan *Message, 256),
	}
	s.broker.streamMu.Lock()
	s.broker.streamSubs = append(s.broker.streamSubs, sub)
	s.broker.streamMu.Unlock()
	return sub, nil
}

type memorySubscription struct {
	broker  *MemoryBroker
	pattern string
	ch      chan *Message
}

func (s *memorySubscription) Next(ctx context.Context) (*Message, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case m := <-s.ch:
		return m, nil
	}
}

func (s *memorySubscription) Close() error {
	s.broker.streamMu.Lock()
	defer s.broker.streamMu.Unlock()
	for i, sub := range s.broker.streamSubs {
		if sub == s {
			s.broker.streamSubs = append(s.broker.streamSubs[:i], s.broker.streamSubs[i+1:]...)
			break
		}
	}
	return nil
}

// subjectMatches implements NATS-style wildcard matching (spec.md §4.1
// "Wildcard rules"): "*" matches exactly one token, ">" matches one or
// more trailing tokens and must be the pattern's final token.
func subjectMatches(pattern, subject string) bool {
	pTokens := strings.Split(pattern, ".")
	sTokens := strings.Split(subject, ".")

	for i, pt := range pTokens {
		if pt == ">" {
			return i < len(sTokens)
		}
		if i >= len(sTokens) {
			return false
		}
		if pt == "*" {
			continue
		}
		if pt != sTokens[i] {
			return false
		}
	}
	return len(pTokens) == len(sTokens)
}
