// Package config loads mall.json, the storefront server configuration.
//
// Every field is optional; missing values get defaults and Validate
// reports out-of-range values as coded errors.
//
// # Configuration File Structure
//
//	{
//	  "name": "mall",
//	  "server": {
//	    "host": "localhost",
//	    "port": 8080,
//	    "base": "/",
//	    "shutdownTimeout": "10s"
//	  },
//	  "views": {
//	    "source": "s3",
//	    "s3": {
//	      "bucket": "mall-views",
//	      "prefix": "v1",
//	      "region": "us-east-1"
//	    }
//	  },
//	  "metrics": {"enabled": true, "path": "/metrics"},
//	  "tracing": {"enabled": false},
//	  "log": {"level": "info", "format": "text"}
//	}
//
// views.source is embed (pages compiled into the binary), disk (views.dir)
// or s3.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    errors.Fprint(os.Stderr, err)
//	    os.Exit(1)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
