package models

// CaptureType is the kind of site-visit recording.
type CaptureType string

const (
	CaptureImage CaptureType = "image"
	CaptureAudio CaptureType = "audio"
	CaptureText  CaptureType = "text"
)

// Capture is one raw input row tied to a job. Which fields are set depends on Type.
type Capture struct {
	Type          CaptureType `json:"type"`
	SignedURL     string      `json:"signed_url,omitempty"`
	OCRText       string      `json:"ocr_text,omitempty"`
	CreatedAt     string      `json:"created_at,omitempty"`
	Transcript    string      `json:"transcript,omitempty"`
	Transcription string      `json:"transcription,omitempty"`
	TextContent   string      `json:"text_content,omitempty"`
}

// ImageEntry is an image reference carried into the prompt.
type ImageEntry struct {
	URL       string `json:"url"`
	Analysis  string `json:"analysis"`
	Timestamp string `json:"timestamp"`
}

// AssembledContext is everything known about a job's captures, flattened for prompting.
type AssembledContext struct {
	JobID          string       `json:"job_id"`
	Images         []ImageEntry `json:"images"`
	Transcripts    string       `json:"transcripts"`
	Notes          string       `json:"notes"`
	ImageCount     int          `json:"image_count"`
	AudioCount     int          `json:"audio_count"`
	TextCount      int          `json:"text_count"`
	AllTextContext string       `json:"all_text_context"`
}
