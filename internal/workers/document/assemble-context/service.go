package assemblecontext

import (
	"strings"

	"docgen-workers/internal/models"
)

const (
	imagePrefix = "IMAGE (OCR): "
	audioPrefix = "AUDIO TRANSCRIPT: "
	notePrefix  = "NOTE: "

	noOCRText      = "No text extracted"
	noTranscript   = "No transcript available"
	blockSeparator = "\n\n"
)

// Assemble groups captures by type and renders the combined narrative.
// Unknown capture types are dropped. Missing fields fall back to
// placeholders, so Assemble never fails.
func Assemble(jobID string, captures []models.Capture) *models.AssembledContext {
	out := &models.AssembledContext{
		JobID:  jobID,
		Images: []models.ImageEntry{},
	}

	var imageBlocks, audioBlocks, noteBlocks []string
	var transcripts, notes []string

	for _, c := range captures {
		switch c.Type {
		case models.CaptureImage:
			out.Images = append(out.Images, models.ImageEntry{
				URL:       c.SignedURL,
				Analysis:  c.OCRText,
				Timestamp: c.CreatedAt,
			})
			imageBlocks = append(imageBlocks, imagePrefix+orDefault(c.OCRText, noOCRText))

		case models.CaptureAudio:
			transcript := orDefault(c.Transcript, c.Transcription)
			audioBlocks = append(audioBlocks, audioPrefix+orDefault(transcript, noTranscript))
			if transcript != "" {
				transcripts = append(transcripts, transcript)
			}

		case models.CaptureText:
			noteBlocks = append(noteBlocks, notePrefix+c.TextContent)
			if c.TextContent != "" {
				notes = append(notes, c.TextContent)
			}
		}
	}

	out.ImageCount = len(imageBlocks)
	out.AudioCount = len(audioBlocks)
	out.TextCount = len(noteBlocks)
	out.Transcripts = strings.Join(transcripts, blockSeparator)
	out.Notes = strings.Join(notes, blockSeparator)

	var sections []string
	for _, blocks := range [][]string{imageBlocks, audioBlocks, noteBlocks} {
		if s := strings.Join(blocks, blockSeparator); s != "" {
			sections = append(sections, s)
		}
	}
	out.AllTextContext = strings.Join(sections, blockSeparator)

	return out
}

// orDefault returns v unless it is empty.
func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
