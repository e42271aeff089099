package hebrew

import "protoflow/internal/models"

// Normalizer applies the OCR repairs that are safe without document context:
// digit-group reversal and road numbers are rewritten in place, Hebrew
// reversal is flagged as a candidate mark and left for the matcher and the
// reviewer, since a name can coincidentally reverse into another valid word.
type Normalizer struct {
	Lexicon    *Lexicon
	Thresholds Thresholds
}

func NewNormalizer() *Normalizer {
	return &Normalizer{Lexicon: NewLexicon(), Thresholds: DefaultThresholds()}
}

func (n *Normalizer) Normalize(raw models.RawExtraction) models.NormalizedText {
	out := models.NormalizedText{
		ProtocolID: raw.ProtocolID,
		Lines:      make([]models.Line, 0, len(raw.Lines)),
	}
	reversedLines := 0
	checkedLines := 0
	for i, line := range raw.Lines {
		text, fixes := FixReversedNumbers(line.Text)
		text, roadFixes := FixReversedRoadNumbers(text)
		fixes = append(fixes, roadFixes...)

		det := DetectReversal(text, n.Lexicon, n.Thresholds)
		if det.Reversed {
			fixes = append(fixes, Fix{
				Start:      0,
				End:        len(text),
				Original:   text,
				Fixed:      SmartReverse(text),
				Kind:       FixReversalCandidate,
				Confidence: det.Confidence,
			})
			reversedLines++
		}
		if len(Words(text)) > 0 {
			checkedLines++
		}

		out.Lines = append(out.Lines, models.Line{Page: line.Page, Text: text, Confidence: line.Confidence})
		for _, f := range fixes {
			out.Marks = append(out.Marks, models.ReversalMark{
				Line:     i,
				Start:    f.Start,
				End:      f.End,
				Original: f.Original,
				Fixed:    f.Fixed,
				Kind:     f.Kind,
			})
		}
	}
	// A document where most Hebrew lines look reversed was scanned back to
	// front as a whole; section slicing uses this to pick anchor direction.
	if checkedLines > 0 && float64(reversedLines) >= float64(checkedLines)*0.5 {
		out.Reversed = true
	}
	return out
}
