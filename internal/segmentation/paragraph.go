package segmentation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"shotsplit/internal/logging"
	"shotsplit/internal/textutil"
)

// Proposer is the external semantic paragraph capability. An empty descriptor
// list signals "no usable answer", not an error.
type Proposer interface {
	Propose(ctx context.Context, fullText, indexedSummary string, targetCount int) ([]ParagraphDescriptor, error)
}

const (
	minSentencesForProposal = 3
	paragraphMsPerTarget    = 60000
	minTargetParagraphs     = 3
	maxTargetParagraphs     = 10
	minEvenSplitSize        = 3
	maxEvenSplitSize        = 8
	maxFullTextLen          = 12000
	maxSummaryLen           = 8000
	maxSummarySentenceLen   = 160
)

// ParagraphStrategy groups transcript sentences into semantically coherent
// paragraphs using an external proposer, repairing whatever the proposer
// returns into a contiguous cover of the sentence list.
type ParagraphStrategy struct {
	proposer Proposer
	logger   *slog.Logger
}

// NewParagraphStrategy constructs the semantic-paragraph strategy. The
// proposer may be nil, in which case every run takes the even-split path.
func NewParagraphStrategy(proposer Proposer, logger *slog.Logger) *ParagraphStrategy {
	return &ParagraphStrategy{
		proposer: proposer,
		logger:   logging.NewComponentLogger(logger, "paragraph-strategy"),
	}
}

func (s *ParagraphStrategy) Key() StrategyKey { return StrategyParagraph }

func (s *ParagraphStrategy) RequiresTranscript() bool { return true }

// Segment range-filters the transcript, asks the proposer for paragraph
// spans, repairs the answer, and maps each paragraph to one clip spanning its
// first through last covered sentence.
func (s *ParagraphStrategy) Segment(ctx context.Context, req Request, media MediaHandle, transcript []TranscriptSegment) ([]Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(transcript) == 0 {
		return nil, Wrap(ErrMissingTranscript, StrategyParagraph, "", "paragraph strategy requires a transcript", nil)
	}
	sentences := FilterByRange(transcript, req.Range)
	if len(sentences) == 0 {
		return nil, nil
	}
	if len(sentences) < minSentencesForProposal {
		clip := s.paragraphClip(req, sentences, 0, len(sentences)-1, ParagraphDescriptor{Title: "Paragraph 1"})
		return ValidateAndReflow([]Clip{clip}, req.Paragraph.MinDurationMs), nil
	}

	target := req.Paragraph.TargetCount
	if target <= 0 {
		total := sentences[len(sentences)-1].EndMs - sentences[0].StartMs
		target = clampInt(int(total/paragraphMsPerTarget), minTargetParagraphs, maxTargetParagraphs)
	}

	descriptors := s.propose(ctx, sentences, target)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	descriptors = repairDescriptors(descriptors, len(sentences))
	if len(descriptors) == 0 {
		descriptors = evenSplit(len(sentences))
	}

	clips := make([]Clip, 0, len(descriptors))
	for i, desc := range descriptors {
		if desc.Title == "" {
			desc.Title = fmt.Sprintf("Paragraph %d", i+1)
		}
		clips = append(clips, s.paragraphClip(req, sentences, desc.StartSentenceIndex, desc.EndSentenceIndex, desc))
	}
	return ValidateAndReflow(clips, req.Paragraph.MinDurationMs), nil
}

// propose calls the external proposer; failures are logged and degrade to the
// even-split fallback rather than surfacing.
func (s *ParagraphStrategy) propose(ctx context.Context, sentences []TranscriptSegment, target int) []ParagraphDescriptor {
	if s.proposer == nil {
		return nil
	}
	fullText, summary := buildPrompts(sentences)
	descriptors, err := s.proposer.Propose(ctx, fullText, summary, target)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.logger.Warn("paragraph proposer failed, using even split", logging.Error(err), logging.Int("sentences", len(sentences)))
		return nil
	}
	return descriptors
}

func (s *ParagraphStrategy) paragraphClip(req Request, sentences []TranscriptSegment, startIdx, endIdx int, desc ParagraphDescriptor) Clip {
	covered := sentences[startIdx : endIdx+1]
	clip := NewClip(req.AssetID, covered[0].StartMs, covered[len(covered)-1].EndMs, StrategyParagraph, req.ParentClipID)
	parts := make([]string, 0, len(covered))
	for _, seg := range covered {
		parts = append(parts, seg.Text)
	}
	clip.Text = strings.Join(parts, " ")
	clip.Title = textutil.TitleCase(desc.Title)
	return clip
}

// buildPrompts produces a length-capped full transcript and a length-capped
// indexed sentence summary for the proposer.
func buildPrompts(sentences []TranscriptSegment) (string, string) {
	var full strings.Builder
	var summary strings.Builder
	for i, seg := range sentences {
		if full.Len() < maxFullTextLen {
			if full.Len() > 0 {
				full.WriteByte(' ')
			}
			full.WriteString(seg.Text)
		}
		if summary.Len() < maxSummaryLen {
			fmt.Fprintf(&summary, "[%d] %s\n", i, textutil.Truncate(seg.Text, maxSummarySentenceLen))
		}
	}
	return textutil.Truncate(full.String(), maxFullTextLen), summary.String()
}

// repairDescriptors normalizes a proposer answer into a contiguous, in-bounds,
// non-empty cover: sort by start, clamp indices, pull a gapped start forward
// to previousEnd+1, drop descriptors pushed wholly past the end, and force the
// last end to N-1. Returns nil when nothing usable remains.
func repairDescriptors(descriptors []ParagraphDescriptor, sentenceCount int) []ParagraphDescriptor {
	if len(descriptors) == 0 || sentenceCount == 0 {
		return nil
	}
	sorted := make([]ParagraphDescriptor, len(descriptors))
	copy(sorted, descriptors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartSentenceIndex < sorted[j].StartSentenceIndex
	})

	repaired := make([]ParagraphDescriptor, 0, len(sorted))
	previousEnd := -1
	for _, desc := range sorted {
		desc.StartSentenceIndex = clampInt(desc.StartSentenceIndex, 0, sentenceCount-1)
		desc.EndSentenceIndex = clampInt(desc.EndSentenceIndex, 0, sentenceCount-1)
		if desc.StartSentenceIndex != previousEnd+1 {
			desc.StartSentenceIndex = previousEnd + 1
		}
		if desc.StartSentenceIndex > sentenceCount-1 {
			// Earlier paragraphs already consumed every sentence.
			break
		}
		if desc.EndSentenceIndex < desc.StartSentenceIndex {
			desc.EndSentenceIndex = desc.StartSentenceIndex
		}
		desc.Index = len(repaired)
		repaired = append(repaired, desc)
		previousEnd = desc.EndSentenceIndex
	}
	if len(repaired) == 0 {
		return nil
	}
	repaired[len(repaired)-1].EndSentenceIndex = sentenceCount - 1
	return repaired
}

// evenSplit produces uniform paragraph spans when the proposer yields nothing
// usable.
func evenSplit(sentenceCount int) []ParagraphDescriptor {
	perParagraph := clampInt(sentenceCount/3, minEvenSplitSize, maxEvenSplitSize)
	descriptors := make([]ParagraphDescriptor, 0, sentenceCount/perParagraph+1)
	for start := 0; start < sentenceCount; start += perParagraph {
		end := start + perParagraph - 1
		if end > sentenceCount-1 {
			end = sentenceCount - 1
		}
		descriptors = append(descriptors, ParagraphDescriptor{
			Index:              len(descriptors),
			Title:              fmt.Sprintf("Paragraph %d", len(descriptors)+1),
			StartSentenceIndex: start,
			EndSentenceIndex:   end,
		})
	}
	return descriptors
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
