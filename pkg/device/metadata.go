package device

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/newtron-network/newtcheck/pkg/util"
)

// configDB is the SONiC CONFIG_DB redis database number.
const configDB = 4

// metadataKey is the CONFIG_DB hash holding the switch identity.
const metadataKey = "DEVICE_METADATA|localhost"

// Metadata is the subset of SONiC DEVICE_METADATA used to identify a switch.
type Metadata struct {
	Hostname string
	HWSKU    string
	Platform string
	MAC      string
}

// Model returns the hardware SKU, falling back to the platform string.
func (m *Metadata) Model() string {
	if m.HWSKU != "" {
		return m.HWSKU
	}
	return m.Platform
}

// MetadataClient reads DEVICE_METADATA from a SONiC CONFIG_DB.
type MetadataClient struct {
	client *redis.Client
}

// NewMetadataClient connects to the CONFIG_DB at addr, usually the local end
// of an SSHTunnel.
func NewMetadataClient(addr string) *MetadataClient {
	return &MetadataClient{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   configDB,
		}),
	}
}

// Close releases the redis connection pool.
func (c *MetadataClient) Close() error {
	return c.client.Close()
}

// Get reads DEVICE_METADATA|localhost.
func (c *MetadataClient) Get(ctx context.Context) (*Metadata, error) {
	vals, err := c.client.HGetAll(ctx, metadataKey).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", metadataKey, err)
	}
	return parseMetadata(vals)
}

func parseMetadata(vals map[string]string) (*Metadata, error) {
	if len(vals) == 0 {
		return nil, fmt.Errorf("%s: %w", metadataKey, util.ErrNotFound)
	}
	return &Metadata{
		Hostname: vals["hostname"],
		HWSKU:    vals["hwsku"],
		Platform: vals["platform"],
		MAC:      vals["mac"],
	}, nil
}
