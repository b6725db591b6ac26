/*
Package store is the relational data model for the tidy library: albums,
items, tags and taggings in a single sqlite database.

Idempotence is the store's central contract. Every create goes through a
find-or-create built on a unique constraint (albums.name, items
(path, filename), tags (type, name), taggings (item_id, tag_id)), so
re-running any pipeline stage converges on the same rows instead of
duplicating them. Later stages mutate item metadata and thumbnail fields
in place; nothing in the pipeline deletes rows.
*/
package store
