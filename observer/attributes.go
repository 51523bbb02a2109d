package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for lectern observability spans and metrics.
var (
	AttrLLMModel    = attribute.Key("llm.model")
	AttrLLMProvider = attribute.Key("llm.provider")

	AttrTokensInput  = attribute.Key("llm.tokens.input")
	AttrTokensOutput = attribute.Key("llm.tokens.output")

	AttrEmbedTextCount  = attribute.Key("llm.embed.text_count")
	AttrEmbedDimensions = attribute.Key("llm.embed.dimensions")

	AttrStoreBackend  = attribute.Key("store.backend")
	AttrStoreRecords  = attribute.Key("store.records")
	AttrStoreTopK     = attribute.Key("store.top_k")
	AttrStoreHitCount = attribute.Key("store.hit_count")
)
