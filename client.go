package homectl

import (
	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-homectl/api/resource"
)

// ClientConfig holds configuration shared by all controller services.
type ClientConfig = resource.ClientConfig

// Client bundles the controller's services behind one configuration.
type Client struct {
	// Resources reads, writes and streams resource values.
	Resources *resource.APIClient
}

// NewClient creates a client for all services from one configuration.
//
// Example:
//
//	client, err := homectl.NewClient(homectl.ClientConfig{
//	    ControllerURL: "https://homeserver.local",
//	    Username:      "admin",
//	    Password:      "secret",
//	})
func NewClient(cfg ClientConfig) (*Client, error) {
	resources, err := resource.NewWithConfig(&cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create resource client")
	}

	return &Client{
		Resources: resources,
	}, nil
}
