// Package treestore maintains the broker's retained-message state as a
// topic tree and serves it over HTTP.
//
// This package manages:
//   - Ingesting the full retained stream via a # subscription
//   - The in-memory topic → payload map (empty payload deletes)
//   - The query API: GET /query/{topic}?depth={n}, 404 on empty subtrees
//   - SQLite snapshots so queries are warm immediately after a restart
//
// # Architecture
//
// graystore is the read path of the Gray Logic retained state bus. The
// connect client library publishes retained values to the broker and
// queries them back through this daemon:
//
//	connect.Publish → MQTT Broker → graystore → connect.Query (HTTP)
//
// The store holds whatever the bus carries; since Gray Logic clients
// publish everything retained, the map converges on the broker's
// retained set.
//
// # Usage
//
//	store := treestore.New(logger)
//	if err := store.Attach(client); err != nil {
//	    return err
//	}
//	server := treestore.NewServer(cfg.HTTP, store, logger)
//	server.Start(ctx)
//	defer server.Close()
package treestore
