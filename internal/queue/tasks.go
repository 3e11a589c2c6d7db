package queue

const TypeAudioTranscribe = "audio:transcribe"

const (
	QueueDefault = "default"
	QueueLow     = "low"
)

// AudioTranscribePayload points at an uploaded audio object the worker
// should transcribe and persist as a transcript.
type AudioTranscribePayload struct {
	Bucket   string `json:"bucket"`
	Path     string `json:"path"`
	FileName string `json:"file_name"`
	Language string `json:"language,omitempty"`
}
