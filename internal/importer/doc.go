// Package importer is the front door of the pipeline: it walks an
// arbitrary source directory, groups supported images into albums by
// their containing directory, resolves each album's year from the
// earliest capture time among its files, and copies everything into the
// managed Originals tree. It deliberately leaves the database alone;
// running the indexer over the resulting tree creates the records.
package importer
