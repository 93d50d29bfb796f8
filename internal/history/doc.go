// Package history records retained-topic changes to InfluxDB.
//
// It wraps the official influxdb-client-go v2 library and turns every
// retained publish (and unpublish) flowing through the message bus into
// a time-series point, giving the store an audit trail of how each topic
// evolved.
//
// # Usage
//
//	rec, err := history.Connect(cfg.History)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rec.Close()
//
//	if err := rec.Attach(client); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Writes are non-blocking and batch errors are delivered via the
// SetOnError callback. Connection and health check errors are returned
// directly.
package history
