// Package homectl is a Go client for home-automation controllers that expose
// their resources over SOAP.
//
// The services live in their own packages; this package only bundles them:
//
//   - api/resource: resource values and change streams
//   - observability: logging and metrics hooks shared by all services
//
// # Example Usage
//
//	client, err := homectl.NewClient(homectl.ClientConfig{
//	    ControllerURL: "https://homeserver.local",
//	    Username:      "admin",
//	    Password:      "secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	values, err := client.Resources.GetValues(ctx, []resource.ID{101, 102})
package homectl
