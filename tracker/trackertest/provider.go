// Package trackertest provides an in-memory chat platform and a manual clock
// for exercising the tracker without Discord or real timers.
package trackertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/VTGare/kekboard/tracker"
)

// Provider is an in-memory tracker.Provider. It is safe for concurrent use.
type Provider struct {
	mu sync.Mutex

	channels []tracker.Channel
	messages map[string][]tracker.Message
	names    map[string]string
	failures map[string]error
	gates    map[string]*gate
	listErr  error
	fetches  map[string]int
}

type gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

var _ tracker.Provider = (*Provider)(nil)

func NewProvider() *Provider {
	return &Provider{
		messages: make(map[string][]tracker.Message),
		names:    make(map[string]string),
		failures: make(map[string]error),
		gates:    make(map[string]*gate),
		fetches:  make(map[string]int),
	}
}

// AddChannel registers ch and appends msgs to its history. The channel ID
// and permalink of each message are filled in when empty.
func (p *Provider) AddChannel(ch tracker.Channel, msgs ...tracker.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.messages[ch.ID]; !ok {
		p.channels = append(p.channels, ch)
	}

	for _, msg := range msgs {
		if msg.ChannelID == "" {
			msg.ChannelID = ch.ID
		}

		if msg.GuildID == "" {
			msg.GuildID = ch.GuildID
		}

		if msg.Permalink == "" {
			msg.Permalink = fmt.Sprintf("https://discord.com/channels/%v/%v/%v", msg.GuildID, msg.ChannelID, msg.ID)
		}

		p.messages[ch.ID] = append(p.messages[ch.ID], msg)
	}

	if p.messages[ch.ID] == nil {
		p.messages[ch.ID] = []tracker.Message{}
	}
}

// SetName sets the display name of a user.
func (p *Provider) SetName(userID, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.names[userID] = name
}

// RemoveName makes the user unresolvable, as if they left the guild.
func (p *Provider) RemoveName(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.names, userID)
}

// Fail makes every history fetch of channelID return err. A nil err clears it.
func (p *Provider) Fail(channelID string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err == nil {
		delete(p.failures, channelID)
		return
	}

	p.failures[channelID] = err
}

// FailChannels makes Channels return err.
func (p *Provider) FailChannels(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.listErr = err
}

// DeleteMessage removes a message from its channel's history.
func (p *Provider) DeleteMessage(channelID, messageID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	msgs := p.messages[channelID]
	for i, msg := range msgs {
		if msg.ID == messageID {
			p.messages[channelID] = append(msgs[:i:i], msgs[i+1:]...)
			return
		}
	}
}

// Block makes history fetches of channelID wait until release is called or
// the fetch context ends. entered is closed once a fetch is waiting.
func (p *Provider) Block(channelID string) (entered <-chan struct{}, release func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	g := &gate{entered: make(chan struct{}), release: make(chan struct{})}
	p.gates[channelID] = g

	return g.entered, func() { close(g.release) }
}

// Fetches returns how many times the history of channelID was requested.
func (p *Provider) Fetches(channelID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.fetches[channelID]
}

func (p *Provider) Channels(ctx context.Context) ([]tracker.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.listErr != nil {
		return nil, p.listErr
	}

	return append([]tracker.Channel(nil), p.channels...), nil
}

func (p *Provider) MessagesSince(ctx context.Context, channelID string, since time.Time) ([]tracker.Message, error) {
	p.mu.Lock()
	p.fetches[channelID]++
	g := p.gates[channelID]
	p.mu.Unlock()

	if g != nil {
		g.once.Do(func() { close(g.entered) })

		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.failures[channelID]; err != nil {
		return nil, err
	}

	msgs, ok := p.messages[channelID]
	if !ok {
		return nil, tracker.ErrNotFound
	}

	out := make([]tracker.Message, 0, len(msgs))
	for _, msg := range msgs {
		if !msg.Timestamp.Before(since) {
			out = append(out, msg)
		}
	}

	return out, nil
}

func (p *Provider) Message(ctx context.Context, channelID, messageID string) (*tracker.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, msg := range p.messages[channelID] {
		if msg.ID == messageID {
			msg := msg
			return &msg, nil
		}
	}

	return nil, tracker.ErrNotFound
}

func (p *Provider) DisplayName(ctx context.Context, channelID, userID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	name, ok := p.names[userID]
	if !ok {
		return "", tracker.ErrNotFound
	}

	return name, nil
}
