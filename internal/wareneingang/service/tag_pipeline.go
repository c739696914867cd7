package service

import (
	"context"
	"log"
	"time"

	"github.com/shirtful/wareneingang/server/internal/wareneingang/decoder"
	"github.com/shirtful/wareneingang/server/internal/wareneingang/events"
)

// loginTimeout bounds the store work triggered by one decoded tag.
const loginTimeout = 5 * time.Second

// TagPipeline adapts decoder outcomes to the rest of the system: decode
// events go to the notifier, and a detected tag runs the login flow. It is
// the decoder.Listener the server-owned decoder is constructed with.
type TagPipeline struct {
	base     context.Context
	login    *LoginService
	notifier events.Publisher
	logger   *log.Logger
}

// NewTagPipeline builds the pipeline. base outlives any single reader
// request; it is the application context, so in-progress logins die with
// the process, not with the HTTP call that carried the keystrokes.
func NewTagPipeline(base context.Context, login *LoginService, notifier events.Publisher, logger *log.Logger) *TagPipeline {
	if notifier == nil {
		notifier = events.Nop{}
	}
	return &TagPipeline{base: base, login: login, notifier: notifier, logger: logger}
}

func (p *TagPipeline) TagDetected(tag string, at time.Time) {
	p.notifier.Publish(events.Event{
		Type: events.TypeTagDetected,
		At:   at,
		Tag:  tag,
	})

	ctx, cancel := context.WithTimeout(p.base, loginTimeout)
	defer cancel()

	resp, err := p.login.LoginByTag(ctx, tag)
	if err != nil {
		p.logger.Printf("tag login failed (tag=%s): %v", tag, err)
		return
	}
	if !resp.Known {
		p.logger.Printf("tag login: identity not found (tag=%s)", tag)
	}
}

func (p *TagPipeline) InvalidScan(reason decoder.Reason, candidate string, at time.Time) {
	p.notifier.Publish(events.Event{
		Type:   events.TypeInvalidScan,
		At:     at,
		Tag:    candidate,
		Reason: string(reason),
	})
}

func (p *TagPipeline) ScanThrottled(tag string, at time.Time) {
	p.notifier.Publish(events.Event{
		Type: events.TypeScanThrottled,
		At:   at,
		Tag:  tag,
	})
}
