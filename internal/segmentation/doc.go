// Package segmentation decomposes a source media asset into an ordered
// sequence of clip proposals using one of several interchangeable strategies.
//
// Three strategies are provided: visual scene change, transcript sentence, and
// semantic paragraph. All three share a small normalization library that
// canonicalizes transcript entries, filters them to a recursive sub-range, and
// reflows clip timeline positions so results are always contiguous from zero.
//
// The Coordinator resolves a strategy per request, enforces transcript
// preconditions, classifies failures, and optionally attaches one
// representative thumbnail per clip. SegmentWithFallback additionally
// downgrades a transcript-dependent strategy to scene change exactly once when
// no transcript is available.
//
// The engine holds no shared mutable state across calls; a single Coordinator
// may serve concurrent requests. External capabilities (scene detection, frame
// extraction, paragraph proposal, aspect lookup) are ports supplied at
// construction and may be nil, in which case the engine degrades to its
// internal fallbacks.
package segmentation
