// Package config loads storebind settings.
//
// Settings live in storebind.yaml (or storebind.json) in the working
// directory. Every field is optional:
//
//	log:
//	  level: debug          # debug, info, warn, error
//	  format: text          # text or json
//	devtools:
//	  enabled: true
//	  addr: 127.0.0.1:7070
//	metrics:
//	  enabled: true
//	  namespace: storebind
//	tracing:
//	  enabled: false
//	  tracerName: storebind
//	scheduler:
//	  maxPasses: 100
//	demo:
//	  interval: 500ms
//	  appends: 10
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if errors.Is(err, config.ErrNotFound) {
//	    cfg = config.Default()
//	} else if err != nil {
//	    return err
//	}
package config
