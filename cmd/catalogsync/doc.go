// Package main hosts the catalog-sync service entrypoint.
//
// Architecture overview:
//   - Sync pipeline: internal/syncer fetches the upstream product feed on a fixed
//     interval (one cycle fires at startup), maps each remote record to the local
//     product shape, and replaces the stored catalog, keeping at most the configured
//     number of products per cycle. Per-product failures are counted and skipped.
//   - HTTP API: internal/api.Server exposes health, metrics, product CRUD, filtered
//     search and a manual sync trigger. Query parameters are parsed once at the
//     boundary into typed filters.
//   - Persistence: internal/store abstracts the product store; the pgx-backed
//     Postgres store serializes variants into a jsonb column, and the in-memory
//     store backs local runs and tests. An empty db.dsn selects the memory store.
//   - Observability & fanout: zap provides structured logging; Prometheus tracks
//     HTTP and cycle metrics; progress events from each cycle are batched through a
//     hub and fanned out to log, Prometheus and optional Pub/Sub sinks. Raw upstream
//     payloads can be archived to local disk or GCS for replay.
//   - Configuration: Viper populates config from env (CATALOG_ prefix) and an
//     optional YAML file.
//
// Run locally: go run ./cmd/catalogsync -config config.yaml, or rely solely on env
// overrides. The process reacts to SIGTERM with a bounded graceful drain.
package main
