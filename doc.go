// Package lectern is a local-first retrieval toolkit for PDF document
// collections: extract page text, chunk it into retrieval-sized passages,
// embed and index the passages in a vector store, and answer questions
// over them with a local LLM grounded on cited context.
//
// # Quick Start
//
// Index a directory of PDFs and ask a question:
//
//	store := sqlite.New("lectern.db")
//	embedding := ollama.NewEmbedding("http://localhost:11434", "nomic-embed-text", 768)
//	pipeline, _ := ingest.NewPipeline(chunk.DefaultConfig())
//
//	indexer := ingest.NewIndexer(store, embedding, pipeline,
//		ingest.WithPageExtractor(ingest.TypePDF, pdf.NewExtractor()))
//	stats, err := indexer.IndexDir(ctx, "documents")
//
//	llm := ollama.New("http://localhost:11434", "llama3.2")
//	answerer := lectern.NewAnswerer(lectern.NewRetriever(store, embedding), llm)
//	answer, err := answerer.Answer(ctx, "What is attention?")
//
// # Core Interfaces
//
// The root package defines the contracts that all components implement:
//
//   - [Provider]: LLM backend for answer generation
//   - [EmbeddingProvider]: text-to-vector embedding
//   - [VectorStore]: record upsert + nearest-neighbour query
//
// # Included Implementations
//
// Chunking: chunk (sentence-aware, size-bounded, overlapping).
// Extraction: ingest/pdf (page-level PDF), ingest (plain text, markdown, HTML).
// Storage: store/sqlite (local, no CGO), store/postgres (pgvector, HNSW).
// Providers: provider/ollama (local Ollama server).
// Observability: observer (OTEL traces, metrics, logs).
package lectern
