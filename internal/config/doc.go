// Package config provides configuration parsing for the newsletter tools.
//
// The configuration is stored in newsletter.json. Every key is optional;
// missing keys take the defaults from New.
//
// # Configuration File Structure
//
//	{
//	  "endpoint": "https://example.com/api/newsletter",
//	  "timeout": "10s",
//	  "address": "localhost:8080",
//	  "successMessage": "Thank you for subscribing!",
//	  "failureMessage": "Something went wrong. Please try again.",
//	  "useServerMessage": false,
//	  "logLevel": "info",
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "newsletter"
//	  },
//	  "tracing": {
//	    "tracerName": "newsletter"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadOrDefault("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Endpoint:", cfg.Endpoint)
package config
