package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/fleetsim/core/events"
	coremetrics "github.com/kilianp07/fleetsim/core/metrics"
	"github.com/kilianp07/fleetsim/infra/metrics"
	"github.com/kilianp07/fleetsim/infra/telemetry"
)

// startInflux starts an InfluxDB 2.7 container and returns it along with the
// base URL. The container is left running until the context is cancelled.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		WaitingFor:   wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	return cont, fmt.Sprintf("http://%s:%s", host, port.Port())
}

// startMosquitto spins up a basic Mosquitto broker for tests.
func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Cmd:          []string{"mosquitto", "-c", "/mosquitto-no-auth.conf"},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "1883")
	return cont, fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

// Test_E2E_TelemetryRoundTrip publishes a tick snapshot over a real broker
// and asserts an external subscriber receives it.
func Test_E2E_TelemetryRoundTrip(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	mqttCont, brokerURL := startMosquitto(ctx, t)
	if mqttCont != nil {
		defer mqttCont.Terminate(ctx) //nolint:errcheck
	}
	t.Logf("Mosquitto started at %s", brokerURL)

	received := make(chan []byte, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(brokerURL).SetClientID("e2e-sub"))
	if token := sub.Connect(); token.Wait() && token.Error() != nil {
		t.Fatalf("subscriber connect: %v", token.Error())
	}
	defer sub.Disconnect(250)
	if token := sub.Subscribe("fleetsim/+/tick", 1, func(_ paho.Client, msg paho.Message) {
		received <- msg.Payload()
	}); token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}

	pub, err := telemetry.NewPublisher(telemetry.Config{Enabled: true, Broker: brokerURL, ClientID: "e2e-pub", QoS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	defer pub.Close()

	want := events.TickEvent{RunID: "e2e-run", Episode: 0, Tick: 3, Responded: 1, Time: time.Now().UTC()}
	if err := pub.PublishTick(want); err != nil {
		t.Fatalf("publish tick: %v", err)
	}

	select {
	case payload := <-received:
		var got events.TickEvent
		if err := json.Unmarshal(payload, &got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if got.RunID != want.RunID || got.Tick != want.Tick {
			t.Fatalf("unexpected payload: %+v", got)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("no telemetry message received")
	}
}

// Test_E2E_InfluxSink records an episode summary into a real InfluxDB and
// reads it back with a Flux query.
func Test_E2E_InfluxSink(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	influxCont, influxURL := startInflux(ctx, t)
	if influxCont != nil {
		defer influxCont.Terminate(ctx) //nolint:errcheck
	}
	t.Logf("InfluxDB started at %s", influxURL)

	org, bucket, token := "e2e_org", "e2e_bucket", "e2e-token"
	cli := NewInfluxClient(influxURL, org, bucket, token)
	defer cli.Close()
	if err := cli.Setup(ctx); err != nil {
		t.Fatalf("setup influx: %v", err)
	}

	cfg := coremetrics.Config{
		InfluxEnabled: true,
		InfluxURL:     influxURL,
		InfluxToken:   token,
		InfluxOrg:     org,
		InfluxBucket:  bucket,
	}
	sink := metrics.NewInfluxSinkWithFallback(cfg)
	if _, ok := sink.(coremetrics.NopSink); ok {
		t.Fatal("influx sink fell back to nop despite healthy server")
	}

	rec := coremetrics.EpisodeRecord{
		RunID:     "e2e-run",
		Episode:   0,
		Ticks:     12,
		Responded: 3,
		Demands:   3,
		Done:      true,
		Time:      time.Now().UTC(),
	}
	if err := sink.RecordEpisode(rec); err != nil {
		t.Fatalf("record episode: %v", err)
	}

	count, err := cli.CountPoints(ctx, fmt.Sprintf(
		`from(bucket:"%s") |> range(start:-5m) |> filter(fn:(r) => r._measurement == "fmp_episode")`, bucket))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if count == 0 {
		t.Fatal("no episode points returned from Influx")
	}
	t.Logf("Influx query returned %d rows", count)
}
