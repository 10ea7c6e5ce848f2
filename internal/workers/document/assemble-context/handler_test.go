package assemblecontext

import (
	"context"
	"testing"

	"docgen-workers/internal/common/logger"
	"docgen-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func image(url, ocr, at string) models.Capture {
	return models.Capture{Type: models.CaptureImage, SignedURL: url, OCRText: ocr, CreatedAt: at}
}

func audio(transcript, transcription string) models.Capture {
	return models.Capture{Type: models.CaptureAudio, Transcript: transcript, Transcription: transcription}
}

func note(text string) models.Capture {
	return models.Capture{Type: models.CaptureText, TextContent: text}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestAssemble(t *testing.T) {
	tests := []struct {
		name           string
		captures       []models.Capture
		validateOutput func(t *testing.T, out *models.AssembledContext)
	}{
		{
			name:     "one of each type",
			captures: []models.Capture{image("", "A", ""), audio("B", ""), note("C")},
			validateOutput: func(t *testing.T, out *models.AssembledContext) {
				assert.Equal(t, "IMAGE (OCR): A\n\nAUDIO TRANSCRIPT: B\n\nNOTE: C", out.AllTextContext)
				assert.Equal(t, "B", out.Transcripts)
				assert.Equal(t, "C", out.Notes)
				assert.Equal(t, 1, out.ImageCount)
				assert.Equal(t, 1, out.AudioCount)
				assert.Equal(t, 1, out.TextCount)
			},
		},
		{
			name: "images keep order and url",
			captures: []models.Capture{
				image("https://cdn/1.jpg", "roof damage", "2024-05-01T10:00:00Z"),
				image("https://cdn/2.jpg", "", "2024-05-01T10:01:00Z"),
			},
			validateOutput: func(t *testing.T, out *models.AssembledContext) {
				require.Len(t, out.Images, 2)
				assert.Equal(t, models.ImageEntry{URL: "https://cdn/1.jpg", Analysis: "roof damage", Timestamp: "2024-05-01T10:00:00Z"}, out.Images[0])
				assert.Equal(t, "", out.Images[1].Analysis)
				assert.Equal(t, "IMAGE (OCR): roof damage\n\nIMAGE (OCR): No text extracted", out.AllTextContext)
			},
		},
		{
			name:     "audio falls back to transcription then placeholder",
			captures: []models.Capture{audio("", "second field"), audio("", "")},
			validateOutput: func(t *testing.T, out *models.AssembledContext) {
				assert.Equal(t, "AUDIO TRANSCRIPT: second field\n\nAUDIO TRANSCRIPT: No transcript available", out.AllTextContext)
				assert.Equal(t, "second field", out.Transcripts)
				assert.Equal(t, 2, out.AudioCount)
			},
		},
		{
			name:     "transcript preferred over transcription",
			captures: []models.Capture{audio("first", "second")},
			validateOutput: func(t *testing.T, out *models.AssembledContext) {
				assert.Equal(t, "first", out.Transcripts)
			},
		},
		{
			name:     "empty notes keep prefix but not raw list",
			captures: []models.Capture{note(""), note("gate code 1234")},
			validateOutput: func(t *testing.T, out *models.AssembledContext) {
				assert.Equal(t, "NOTE: \n\nNOTE: gate code 1234", out.AllTextContext)
				assert.Equal(t, "gate code 1234", out.Notes)
			},
		},
		{
			name:     "raw values joined with blank lines",
			captures: []models.Capture{audio("one", ""), audio("two", ""), note("x"), note("y")},
			validateOutput: func(t *testing.T, out *models.AssembledContext) {
				assert.Equal(t, "one\n\ntwo", out.Transcripts)
				assert.Equal(t, "x\n\ny", out.Notes)
			},
		},
		{
			name:     "missing sections leave no header",
			captures: []models.Capture{note("only a note")},
			validateOutput: func(t *testing.T, out *models.AssembledContext) {
				assert.Equal(t, "NOTE: only a note", out.AllTextContext)
				assert.NotContains(t, out.AllTextContext, "IMAGE")
				assert.NotContains(t, out.AllTextContext, "AUDIO")
				assert.Empty(t, out.Images)
				assert.NotNil(t, out.Images)
			},
		},
		{
			name:     "unknown types are dropped",
			captures: []models.Capture{{Type: "video"}, {Type: "IMAGE"}, note("n")},
			validateOutput: func(t *testing.T, out *models.AssembledContext) {
				assert.Equal(t, 0, out.ImageCount)
				assert.Equal(t, 1, out.TextCount)
				assert.Equal(t, "NOTE: n", out.AllTextContext)
			},
		},
		{
			name: "no captures",
			validateOutput: func(t *testing.T, out *models.AssembledContext) {
				assert.Equal(t, "", out.AllTextContext)
				assert.Equal(t, "", out.Transcripts)
				assert.Equal(t, "", out.Notes)
				assert.Zero(t, out.ImageCount+out.AudioCount+out.TextCount)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Assemble("J1", tt.captures)
			assert.Equal(t, "J1", out.JobID)
			tt.validateOutput(t, out)
		})
	}
}

func TestAssemble_CountsMatchRecognizedCaptures(t *testing.T) {
	captures := []models.Capture{
		image("u", "", ""), {Type: "video"}, audio("a", ""), note("n"),
		{Type: ""}, image("", "", ""), note(""),
	}

	out := Assemble("J2", captures)

	assert.Equal(t, 5, out.ImageCount+out.AudioCount+out.TextCount)
	assert.Equal(t, 2, out.ImageCount)
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	h := createTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		JobID:    "job-77",
		Captures: []models.Capture{image("https://cdn/p.jpg", "meter reading 42", "t0")},
	})

	require.NoError(t, err)
	require.NotNil(t, out.AssembledContext)
	assert.Equal(t, "job-77", out.AssembledContext.JobID)
	assert.Equal(t, "IMAGE (OCR): meter reading 42", out.AssembledContext.AllTextContext)
}

func TestParseInput(t *testing.T) {
	job := entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:     1,
		Type:    TaskType,
		Retries: 3,
		Variables: `{
			"job_id": "J9",
			"captures": [
				{"type": "image", "signed_url": "https://cdn/a.jpg", "ocr_text": "A", "created_at": "2024-01-01T00:00:00Z"},
				{"type": "audio", "transcription": "B"},
				{"type": "text", "text_content": "C", "extra": true}
			],
			"template_id": "t-1"
		}`,
	}}

	input, err := parseInput(job)
	require.NoError(t, err)
	assert.Equal(t, "J9", input.JobID)
	require.Len(t, input.Captures, 3)
	assert.Equal(t, "B", input.Captures[1].Transcription)

	_, err = parseInput(entities.Job{ActivatedJob: &pb.ActivatedJob{Variables: `{"captures": "nope"}`}})
	assert.Error(t, err)
}
