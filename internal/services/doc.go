// Package services defines shared helpers consumed by the segmentation engine
// and its external collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp request, asset, and session identifiers for
//     logging and tracing across strategy and collaborator boundaries.
//
// Use these helpers when wiring new collaborator adapters so operational
// behaviour stays uniform across the engine.
package services
