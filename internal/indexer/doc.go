// Package indexer rebuilds the relational records from the managed
// Originals tree. Albums come from directory paths relative to the tree
// root, items from the files inside them; both are find-or-create, so the
// indexer can safely re-run over an already-populated store.
package indexer
