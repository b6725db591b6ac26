// Package thumbnailer derives browsing thumbnails through the external
// image-conversion tool. The target path is deterministic
// (Thumbnails/<album-path>/<basename>.jpeg), which makes the stage
// self-repairing: an existing file with a missing database reference is
// relinked without regenerating, and a conversion that produced no file
// is retried on the next run.
package thumbnailer
