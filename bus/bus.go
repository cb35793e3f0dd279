// Package bus is a small in-process pub/sub with MQTT-style topics.
//
// Topics are token slices. In a subscription "+" matches exactly one token
// and "#" (last position only) matches the rest, including nothing.
// Retained messages are replayed to new matching subscribers; publishing a
// retained nil payload clears the slot.
package bus

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	SingleWild = "+"
	MultiWild  = "#"
)

// Topic is a sequence of comparable tokens.
type Topic []any

// T builds a topic and panics on a token that cannot be a map key.
func T(tokens ...any) Topic {
	for _, tok := range tokens {
		if tok == nil || !reflect.TypeOf(tok).Comparable() {
			panic(fmt.Sprintf("bus: token %#v is not comparable", tok))
		}
	}
	return Topic(tokens)
}

// ParseTopic splits a slash-separated topic.
func ParseTopic(s string) Topic {
	parts := strings.Split(s, "/")
	t := make(Topic, len(parts))
	for i, p := range parts {
		t[i] = p
	}
	return t
}

func (t Topic) String() string {
	var sb strings.Builder
	for i, tok := range t {
		if i > 0 {
			sb.WriteByte('/')
		}
		fmt.Fprint(&sb, tok)
	}
	return sb.String()
}

// Append returns a new topic with extra tokens.
func (t Topic) Append(tokens ...any) Topic {
	out := make(Topic, 0, len(t)+len(tokens))
	return append(append(out, t...), tokens...)
}

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
}

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

type node struct {
	children map[any]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok any, create bool) *node {
	if c := n.children[tok]; c != nil || !create {
		return c
	}
	if n.children == nil {
		n.children = make(map[any]*node)
	}
	c := &node{}
	n.children[tok] = c
	return c
}

type Bus struct {
	mu    sync.Mutex
	root  *node
	qLen  int
	reply atomic.Uint64
}

// NewBus creates a bus whose subscriptions buffer queueLen messages. A full
// subscription drops its oldest message.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{root: &node{}, qLen: queueLen}
}

func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var targets []*Subscription
	collectSubs(b.root, msg.Topic, &targets)
	for _, s := range targets {
		offer(s.ch, msg)
	}

	if !msg.Retained {
		return
	}
	if msg.Payload == nil {
		n := b.root
		for _, tok := range msg.Topic {
			if n = n.child(tok, false); n == nil {
				return
			}
		}
		n.retained = nil
		b.prune(msg.Topic)
		return
	}
	n := b.root
	for _, tok := range msg.Topic {
		n = n.child(tok, true)
	}
	n.retained = msg
}

// collectSubs gathers subscriptions whose pattern matches topic.
func collectSubs(n *node, topic Topic, out *[]*Subscription) {
	if h := n.children[MultiWild]; h != nil {
		*out = append(*out, h.subs...)
	}
	if len(topic) == 0 {
		*out = append(*out, n.subs...)
		return
	}
	if c := n.children[topic[0]]; c != nil {
		collectSubs(c, topic[1:], out)
	}
	if topic[0] != SingleWild {
		if c := n.children[SingleWild]; c != nil {
			collectSubs(c, topic[1:], out)
		}
	}
}

// collectRetained gathers retained messages under nodes matching pattern.
func collectRetained(n *node, pattern Topic, out *[]*Message) {
	if len(pattern) == 0 {
		if n.retained != nil {
			*out = append(*out, n.retained)
		}
		return
	}
	switch pattern[0] {
	case MultiWild:
		walkRetained(n, out)
	case SingleWild:
		for _, c := range n.children {
			collectRetained(c, pattern[1:], out)
		}
	default:
		if c := n.children[pattern[0]]; c != nil {
			collectRetained(c, pattern[1:], out)
		}
	}
}

func walkRetained(n *node, out *[]*Message) {
	if n.retained != nil {
		*out = append(*out, n.retained)
	}
	for _, c := range n.children {
		walkRetained(c, out)
	}
}

func offer(ch chan *Message, msg *Message) {
	for {
		select {
		case ch <- msg:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (b *Bus) subscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.root
	for _, tok := range sub.topic {
		n = n.child(tok, true)
	}
	n.subs = append(n.subs, sub)

	var retained []*Message
	collectRetained(b.root, sub.topic, &retained)
	for _, m := range retained {
		offer(sub.ch, m)
	}
}

func (b *Bus) unsubscribe(sub *Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.root
	for _, tok := range sub.topic {
		if n = n.child(tok, false); n == nil {
			return false
		}
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			b.prune(sub.topic)
			return true
		}
	}
	return false
}

// prune drops empty nodes along topic, deepest first. Caller holds mu.
func (b *Bus) prune(topic Topic) {
	path := make([]*node, 0, len(topic)+1)
	n := b.root
	path = append(path, n)
	for _, tok := range topic {
		if n = n.child(tok, false); n == nil {
			return
		}
		path = append(path, n)
	}
	for i := len(topic) - 1; i >= 0; i-- {
		c := path[i+1]
		if len(c.subs) > 0 || len(c.children) > 0 || c.retained != nil {
			return
		}
		delete(path[i].children, topic[i])
	}
}

// Connection groups the subscriptions of one client so they can be torn
// down together.
type Connection struct {
	bus  *Bus
	id   string
	mu   sync.Mutex
	subs []*Subscription
}

func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{topic: topic, ch: make(chan *Message, c.bus.qLen), conn: c}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	c.bus.subscribe(sub)
	return sub
}

// Unsubscribe detaches sub and closes its channel. Calling it twice is a
// no-op.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.mu.Lock()
	found := false
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}
	c.bus.unsubscribe(sub)
	close(sub.ch)
}

func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}

// Request subscribes to a fresh reply topic, stamps it on msg and publishes
// msg. The caller owns the returned subscription.
func (c *Connection) Request(msg *Message) *Subscription {
	msg.ReplyTo = T("_reply", c.id, c.bus.reply.Add(1))
	sub := c.Subscribe(msg.ReplyTo)
	c.Publish(msg)
	return sub
}

// RequestWait publishes msg and waits for the first reply.
func (c *Connection) RequestWait(ctx context.Context, msg *Message) (*Message, error) {
	sub := c.Request(msg)
	defer c.Unsubscribe(sub)
	select {
	case m := <-sub.Channel():
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Reply answers req on its ReplyTo topic. A request without ReplyTo is
// ignored.
func (c *Connection) Reply(req *Message, payload any, retained bool) {
	if len(req.ReplyTo) == 0 {
		return
	}
	c.Publish(c.NewMessage(req.ReplyTo, payload, retained))
}
