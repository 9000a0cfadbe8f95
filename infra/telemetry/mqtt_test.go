package telemetry

import (
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetsim/core/events"
)

type mockToken struct{ err error }

func (t *mockToken) Wait() bool                     { return true }
func (t *mockToken) WaitTimeout(time.Duration) bool { return true }
func (t *mockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *mockToken) Error() error { return t.err }

type mockClient struct {
	connected bool
	topics    []string
	payloads  [][]byte
}

func (m *mockClient) IsConnected() bool { return m.connected }
func (m *mockClient) Connect() paho.Token {
	m.connected = true
	return &mockToken{}
}
func (m *mockClient) Disconnect(uint) { m.connected = false }
func (m *mockClient) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	m.topics = append(m.topics, topic)
	m.payloads = append(m.payloads, payload.([]byte))
	return &mockToken{}
}

func withMockClient(t *testing.T) *mockClient {
	t.Helper()
	cli := &mockClient{}
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return cli }
	t.Cleanup(func() { newMQTTClient = orig })
	return cli
}

func TestPublisherPublishesTickAndEpisode(t *testing.T) {
	cli := withMockClient(t)
	pub, err := NewPublisher(Config{Enabled: true, Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	defer pub.Close()

	require.NoError(t, pub.PublishTick(events.TickEvent{RunID: "run1", Tick: 3}))
	require.NoError(t, pub.PublishEpisode(events.EpisodeEvent{RunID: "run1", Episode: 0, Done: true}))

	require.Len(t, cli.topics, 2)
	assert.Equal(t, "fleetsim/run1/tick", cli.topics[0])
	assert.Equal(t, "fleetsim/run1/episode", cli.topics[1])

	var tick events.TickEvent
	require.NoError(t, json.Unmarshal(cli.payloads[0], &tick))
	assert.Equal(t, 3, tick.Tick)
}

func TestPublisherWatchForwardsEvents(t *testing.T) {
	cli := withMockClient(t)
	pub, err := NewPublisher(Config{Enabled: true, Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	defer pub.Close()

	ch := make(chan events.Event, 2)
	ch <- events.TickEvent{RunID: "r", Tick: 1}
	ch <- events.EpisodeEvent{RunID: "r"}
	close(ch)
	pub.Watch(ch)

	assert.Len(t, cli.topics, 2)
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{Enabled: true}.Validate())
	assert.NoError(t, Config{Enabled: false}.Validate())
}
