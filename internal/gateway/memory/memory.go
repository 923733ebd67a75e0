// Package memory provides an in-process gateway driver. It backs the test
// suites and doubles as a standalone driver for local runs without a real
// chat-platform binding.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"migrator/bot/internal/gateway"
)

func init() {
	gateway.Register("memory", driver{})
}

type driver struct{}

func (driver) Open(opts gateway.Options) (gateway.Client, error) {
	return New(), nil
}

// SentMessage records one outbound message for test assertions.
type SentMessage struct {
	Ref     gateway.MessageRef
	UserID  string // set for direct messages
	Content string
	Direct  bool
}

// Client is an in-memory gateway.Client. All state is guarded by a single
// mutex; events are delivered over a buffered channel.
type Client struct {
	mu       sync.Mutex
	users    map[string]gateway.User
	dmClosed map[string]bool
	channels map[string]bool
	deleted  map[string]bool
	messages map[string]string // "channel/message" -> content
	reactons map[string][]string
	sent     []SentMessage
	nextID   int
	events   chan gateway.Event
	closed   bool
}

func New() *Client {
	return &Client{
		users:    make(map[string]gateway.User),
		dmClosed: make(map[string]bool),
		channels: make(map[string]bool),
		deleted:  make(map[string]bool),
		messages: make(map[string]string),
		reactons: make(map[string][]string),
		events:   make(chan gateway.Event, 64),
	}
}

// AddUser registers a user the client can fetch and DM.
func (c *Client) AddUser(u gateway.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[u.ID] = u
}

// AddChannel registers an existing channel.
func (c *Client) AddChannel(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels[id] = true
}

// CloseDMs makes SendDirect fail for the user with ErrUnreachable.
func (c *Client) CloseDMs(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dmClosed[userID] = true
}

func (c *Client) FetchUser(ctx context.Context, userID string) (gateway.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.users[userID]
	if !ok {
		return gateway.User{}, gateway.ErrUserNotFound
	}
	return u, nil
}

// DMChannelID returns the direct-channel id the client uses for a user.
func DMChannelID(userID string) string {
	return "dm:" + userID
}

func (c *Client) SendDirect(ctx context.Context, userID, content string) (gateway.MessageRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.users[userID]; !ok {
		return gateway.MessageRef{}, gateway.ErrUserNotFound
	}
	if c.dmClosed[userID] {
		return gateway.MessageRef{}, gateway.ErrUnreachable
	}
	channelID := DMChannelID(userID)
	c.channels[channelID] = true
	ref := c.record(channelID, content)
	c.sent = append(c.sent, SentMessage{Ref: ref, UserID: userID, Content: content, Direct: true})
	return ref, nil
}

func (c *Client) SendChannel(ctx context.Context, channelID, content string) (gateway.MessageRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleted[channelID] || !c.channels[channelID] {
		return gateway.MessageRef{}, gateway.ErrChannelMissing
	}
	ref := c.record(channelID, content)
	c.sent = append(c.sent, SentMessage{Ref: ref, Content: content})
	return ref, nil
}

func (c *Client) EditMessage(ctx context.Context, ref gateway.MessageRef, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := ref.ChannelID + "/" + ref.MessageID
	if _, ok := c.messages[key]; !ok {
		return gateway.ErrMessageMissing
	}
	c.messages[key] = content
	return nil
}

func (c *Client) AddReaction(ctx context.Context, ref gateway.MessageRef, emoji string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := ref.ChannelID + "/" + ref.MessageID
	if _, ok := c.messages[key]; !ok {
		return gateway.ErrMessageMissing
	}
	c.reactons[key] = append(c.reactons[key], emoji)
	return nil
}

func (c *Client) CreateScopedChannel(ctx context.Context, ownerUserID, reviewerRoleID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := fmt.Sprintf("ticket-%s-%d", ownerUserID, c.nextID)
	c.channels[id] = true
	return id, nil
}

func (c *Client) DeleteChannel(ctx context.Context, channelID string) error {
	c.mu.Lock()
	if c.deleted[channelID] || !c.channels[channelID] {
		c.mu.Unlock()
		return gateway.ErrChannelMissing
	}
	c.deleted[channelID] = true
	c.mu.Unlock()
	c.emit(gateway.ChannelDeleted{ChannelID: channelID})
	return nil
}

func (c *Client) Events() <-chan gateway.Event {
	return c.events
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	return nil
}

// InjectMessage feeds an inbound message event. Channel and message ids are
// assigned when absent so tests can stay terse.
func (c *Client) InjectMessage(msg gateway.Message) gateway.Message {
	c.mu.Lock()
	if msg.ChannelID == "" {
		msg.ChannelID = DMChannelID(msg.AuthorID)
		msg.DM = true
	}
	c.channels[msg.ChannelID] = true
	if msg.ID == "" {
		c.nextID++
		msg.ID = fmt.Sprintf("msg-%d", c.nextID)
	}
	c.messages[msg.ChannelID+"/"+msg.ID] = msg.Content
	c.mu.Unlock()
	c.emit(gateway.MessageCreated{Message: msg})
	return msg
}

// InjectReaction feeds a reaction-added event.
func (c *Client) InjectReaction(ref gateway.MessageRef, emoji, userID string) {
	c.emit(gateway.ReactionAdded{Ref: ref, Emoji: emoji, UserID: userID})
}

// InjectChannelDeleted simulates an external actor deleting a channel.
func (c *Client) InjectChannelDeleted(channelID string) {
	c.mu.Lock()
	c.deleted[channelID] = true
	c.mu.Unlock()
	c.emit(gateway.ChannelDeleted{ChannelID: channelID})
}

func (c *Client) emit(ev gateway.Event) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	c.events <- ev
}

func (c *Client) record(channelID, content string) gateway.MessageRef {
	c.nextID++
	ref := gateway.MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("msg-%d", c.nextID)}
	c.messages[channelID+"/"+ref.MessageID] = content
	return ref
}

// Sent returns a copy of every message the bot has sent.
func (c *Client) Sent() []SentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SentMessage, len(c.sent))
	copy(out, c.sent)
	return out
}

// SentTo returns the contents of messages sent to one channel.
func (c *Client) SentTo(channelID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, m := range c.sent {
		if m.Ref.ChannelID == channelID {
			out = append(out, m.Content)
		}
	}
	return out
}

// LastSent returns the most recent outbound message, or false if none.
func (c *Client) LastSent() (SentMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return SentMessage{}, false
	}
	return c.sent[len(c.sent)-1], true
}

// MessageContent returns the current content of a message.
func (c *Client) MessageContent(ref gateway.MessageRef) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	content, ok := c.messages[ref.ChannelID+"/"+ref.MessageID]
	return content, ok
}

// Reactions returns the emoji added to a message by the bot.
func (c *Client) Reactions(ref gateway.MessageRef) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.reactons[ref.ChannelID+"/"+ref.MessageID]...)
}

// ChannelDeleted reports whether a channel has been deleted.
func (c *Client) ChannelDeleted(channelID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleted[channelID]
}

// IsTicketChannel reports whether an id was minted by CreateScopedChannel.
func IsTicketChannel(id string) bool {
	return strings.HasPrefix(id, "ticket-")
}
