// Package retrieval implements the in-memory document index used to augment
// prompts with reference material before they reach a provider.
//
// Documents are embedded with a TextEmbedder. The default HashEmbedder is a
// deterministic stand-in derived from a rolling hash of the text: the same
// text always yields the same vector and no model is required. It is not a
// semantic embedding and retrieval quality should not be judged by it.
//
// Search ranks documents by
//
//	relevance = cosineSimilarity*0.7 + keywordOverlap*0.3
//
// keeping insertion order for equal scores.
//
// Every document carries a Classification. GetDocument refuses callers whose
// clearance ranks below the document's classification.
package retrieval
