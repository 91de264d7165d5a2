package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"vistara/internal/domain"
)

const (
	statusOnline  = "online"
	statusOffline = "offline"
)

type PublisherConfig struct {
	BrokerURL      string
	ClientID       string
	Username       string
	Password       string
	TopicPrefix    string
	PublishTimeout time.Duration
}

// Publisher broadcasts completed conversations to the broker.
type Publisher struct {
	cfg    PublisherConfig
	client paho.Client
	logger *slog.Logger
}

func NewPublisher(cfg PublisherConfig, logger *slog.Logger) *Publisher {
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	return &Publisher{cfg: cfg, logger: logger}
}

func (p *Publisher) clientOptions() *paho.ClientOptions {
	opts := paho.NewClientOptions().
		AddBroker(p.cfg.BrokerURL).
		SetClientID(p.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetWill(TopicStatus(p.cfg.TopicPrefix), statusOffline, 1, true)

	if p.cfg.Username != "" {
		opts.SetUsername(p.cfg.Username)
		opts.SetPassword(p.cfg.Password)
	}

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		p.logger.Error("mqtt connection lost", "error", err)
	})
	opts.SetOnConnectHandler(func(c paho.Client) {
		c.Publish(TopicStatus(p.cfg.TopicPrefix), 1, true, statusOnline)
		p.logger.Info("mqtt connected", "broker", p.cfg.BrokerURL)
	})
	return opts
}

// Start connects to the broker and disconnects once ctx is done.
func (p *Publisher) Start(ctx context.Context) error {
	p.client = paho.NewClient(p.clientOptions())
	if token := p.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	go func() {
		<-ctx.Done()
		if token := p.client.Publish(TopicStatus(p.cfg.TopicPrefix), 1, true, statusOffline); token.WaitTimeout(time.Second) && token.Error() != nil {
			p.logger.Warn("mqtt offline status publish failed", "error", token.Error())
		}
		p.client.Disconnect(100)
	}()
	return nil
}

// PublishCompletion sends event as JSON at QoS 1.
func (p *Publisher) PublishCompletion(ctx context.Context, event domain.CompletionEvent) error {
	if p.client == nil {
		return fmt.Errorf("mqtt publisher not started")
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := TopicCompletion(p.cfg.TopicPrefix, event.SessionID)
	token := p.client.Publish(topic, 1, false, body)

	timeout := p.cfg.PublishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	p.logger.Debug("completion published", "topic", topic, "intent", event.Intent)
	return nil
}

func (p *Publisher) OnComplete(ctx context.Context, event domain.CompletionEvent) error {
	return p.PublishCompletion(ctx, event)
}
