// Package connectors holds the document sources that feed ingestion.
// Each connector turns one source type into a stream of raw documents;
// the filesystem connector walks and watches a local corpus directory.
package connectors
