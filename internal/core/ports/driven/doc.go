// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Connector: Streams raw documents from the corpus directory
//   - Normaliser: Extracts text from one kind of raw document
//   - NormaliserRegistry: Selects the appropriate normaliser
//   - PostProcessorPipeline: Turns a document into hashed chunks
//   - ChunkStore: Content-addressed chunk persistence and lookup
//   - Ranker: Relevance strategy used by ChunkStore.SimilaritySearch
//   - ConfigStore: Application configuration
//   - PromptStore: Editable prompt texts (the system policy)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - CompletionProvider: Produces grounded answers. Without one, questions get an error notice.
//   - EmbeddingService: Generates vector embeddings. Only the semantic ranker needs it.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
