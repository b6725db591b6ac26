/*
Package taskqueue is the bounded concurrency primitive used by every
pipeline stage.

A stage enumerates its batch of work up front, then calls Run with a
per-item function and a concurrency limit. Workers pull items from a
channel; failures (errors and panics) are logged per item and isolated, so
one corrupt file never aborts a batch. Run returns exactly once, after the
last accepted item has finished.

Serial stages pass concurrency 1 (disk-heavy copies, subprocess pools);
cheap store-query stages size themselves with ForCPU/ForIO, which respect
container CPU limits through GOMAXPROCS and can be overridden with the
TIDY_WORKERS environment variable.
*/
package taskqueue
