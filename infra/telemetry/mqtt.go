package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/fleetsim/core/events"
	"github.com/kilianp07/fleetsim/infra/logger"
)

// Config defines the connection parameters for the MQTT telemetry
// publisher.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "fleetsim"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "fleetsim"
	}
}

// Validate checks mandatory fields when telemetry is enabled.
func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("telemetry broker is required")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher streams simulation events as JSON over MQTT so external
// consumers, a renderer for instance, can follow a run live.
type Publisher struct {
	cli    pahoClient
	prefix string
	qos    byte
	log    logger.Logger
}

// NewPublisher connects to the broker and returns a ready publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)
	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("telemetry connect: %w", token.Error())
	}
	return &Publisher{
		cli:    cli,
		prefix: cfg.TopicPrefix,
		qos:    cfg.QoS,
		log:    logger.New("telemetry"),
	}, nil
}

// PublishTick publishes the tick snapshot on <prefix>/<runID>/tick.
func (p *Publisher) PublishTick(ev events.TickEvent) error {
	return p.publish(fmt.Sprintf("%s/%s/tick", p.prefix, ev.RunID), ev)
}

// PublishEpisode publishes the episode summary on <prefix>/<runID>/episode.
func (p *Publisher) PublishEpisode(ev events.EpisodeEvent) error {
	return p.publish(fmt.Sprintf("%s/%s/episode", p.prefix, ev.RunID), ev)
}

func (p *Publisher) publish(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if token := p.cli.Publish(topic, p.qos, false, data); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish %s: %w", topic, token.Error())
	}
	return nil
}

// Watch consumes bus events until the channel closes, forwarding tick and
// episode events to the broker. Intended to run in its own goroutine.
func (p *Publisher) Watch(ch <-chan events.Event) {
	for ev := range ch {
		var err error
		switch e := ev.(type) {
		case events.TickEvent:
			err = p.PublishTick(e)
		case events.EpisodeEvent:
			err = p.PublishEpisode(e)
		}
		if err != nil {
			p.log.Warnf("telemetry publish: %v", err)
		}
	}
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
