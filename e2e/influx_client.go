package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient is a small helper around the official InfluxDB v2 client
// used by the E2E tests. It hides token/org/bucket plumbing and performs
// the initial onboarding of a fresh instance.
type InfluxClient struct {
	url    string
	org    string
	bucket string
	token  string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient creates a new client for the given parameters. It assumes
// the server is already running and reachable.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{
		url:    url,
		org:    org,
		bucket: bucket,
		token:  token,
		client: c,
		query:  c.QueryAPI(org),
	}
}

// Setup onboards the fresh InfluxDB instance with the configured org,
// bucket and token. Running it twice is an error on the server side, so it
// is only meant for containers created by the test itself.
func (c *InfluxClient) Setup(ctx context.Context) error {
	if _, err := c.client.SetupWithToken(ctx, "e2e", "e2e-password", c.org, c.bucket, 0, c.token); err != nil {
		return fmt.Errorf("influx onboarding: %w", err)
	}
	return nil
}

// CountPoints runs a Flux range query over the bucket and counts the rows.
func (c *InfluxClient) CountPoints(ctx context.Context, flux string) (int, error) {
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer func() { _ = res.Close() }()
	count := 0
	for res.Next() {
		count++
	}
	return count, res.Err()
}

// Close shuts the underlying client down.
func (c *InfluxClient) Close() {
	c.client.Close()
}
