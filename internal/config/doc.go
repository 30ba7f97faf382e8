// Package config provides configuration parsing for the vango-store CLI.
//
// The configuration is stored in vango-store.json in the working directory.
// A missing file means defaults. Environment variables prefixed with
// VANGO_STORE_ override file values.
//
// # Configuration File Structure
//
//	{
//	  "debug": false,
//	  "logLevel": "info",
//	  "runtime": {
//	    "renderBudget": 100
//	  },
//	  "metrics": {
//	    "namespace": "vango",
//	    "subsystem": "store",
//	    "constLabels": {"env": "dev"},
//	    "buckets": [0.00001, 0.0001, 0.001, 0.01],
//	    "addr": ":9090"
//	  },
//	  "tracing": {
//	    "tracerName": "github.com/vango-dev/store"
//	  },
//	  "bench": {
//	    "consumers": 100,
//	    "updates": 10000
//	  }
//	}
//
// # Environment Overrides
//
//	VANGO_STORE_DEBUG=true
//	VANGO_STORE_LOG_LEVEL=debug
//	VANGO_STORE_RUNTIME_RENDER_BUDGET=200
//	VANGO_STORE_METRICS_ADDR=:9100
//	VANGO_STORE_METRICS_CONST_LABELS=env:prod,region:eu
//	VANGO_STORE_METRICS_BUCKETS=0.0001,0.001,0.01
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Budget:", cfg.Runtime.RenderBudget)
package config
