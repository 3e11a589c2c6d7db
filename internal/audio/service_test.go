package audio

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/queue"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/storage"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/stt"
)

type fakeProvider struct {
	mu      sync.Mutex
	text    string
	err     error
	gotReq  stt.TranscriptionRequest
	gotBody string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Transcribe(_ context.Context, req stt.TranscriptionRequest) (*stt.TranscriptionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gotReq = req
	var data []byte
	if req.Reader != nil {
		data, _ = io.ReadAll(req.Reader)
	} else {
		data, _ = os.ReadFile(req.FilePath)
	}
	p.gotBody = string(data)
	if p.err != nil {
		return nil, p.err
	}
	return &stt.TranscriptionResponse{Text: p.text, Language: "english", Duration: 1.25}, nil
}

type fakeTranscoder struct {
	err error
}

func (f *fakeTranscoder) ToWAV(_ context.Context, input, tmpDir string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	out := filepath.Join(tmpDir, "converted.wav")
	return out, os.WriteFile(out, []byte("WAV16K"), 0o644)
}

type fakeEnqueuer struct {
	got queue.AudioTranscribePayload
	err error
}

func (f *fakeEnqueuer) EnqueueAudioTranscribe(_ context.Context, p queue.AudioTranscribePayload) (string, error) {
	f.got = p
	return "task-123", f.err
}

type fixture struct {
	svc      *Service
	store    *storage.LocalStorage
	provider *fakeProvider
}

func newFixture(t *testing.T, transcoder Transcoder, enqueuer Enqueuer) *fixture {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	provider := &fakeProvider{text: "hello world"}
	svc := NewService(store, provider, transcoder, enqueuer, Config{Bucket: "audio", MaxBytes: 16})
	svc.now = func() time.Time { return time.UnixMilli(1715872323423) }
	return &fixture{svc: svc, store: store, provider: provider}
}

func TestUpload_TranscribesSynchronously(t *testing.T) {
	f := newFixture(t, nil, nil)

	res, err := f.svc.Upload(context.Background(), UploadRequest{
		FileName:    "Memo.WAV",
		ContentType: "audio/wav",
		Size:        4,
		Data:        strings.NewReader("RIFF"),
		Language:    "en-us",
	})
	require.NoError(t, err)

	assert.Equal(t, "hello world", res.Transcript)
	assert.Equal(t, "en-US", res.Language)
	assert.Equal(t, "english", res.Detected)
	assert.InDelta(t, 1.25, res.Duration, 0.001)
	assert.Empty(t, res.TaskID)

	assert.Regexp(t, `^1715872323423-[0-9a-f]{8}\.wav$`, res.Upload.FileName)
	assert.Equal(t, "/uploads/audio/"+res.Upload.FileName, res.Upload.FilePath)
	assert.Equal(t, int64(4), res.Upload.SizeBytes)

	assert.Equal(t, "RIFF", f.provider.gotBody)
	assert.Equal(t, "en-US", f.provider.gotReq.Language)
	assert.Equal(t, res.Upload.FileName, f.provider.gotReq.FilePath)

	rc, err := f.store.Download(context.Background(), "audio", res.Upload.FileName)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "RIFF", string(data))
}

func TestUpload_DefaultLanguage(t *testing.T) {
	f := newFixture(t, nil, nil)

	res, err := f.svc.Upload(context.Background(), UploadRequest{
		FileName: "a.mp3", Size: 3, Data: strings.NewReader("ID3"),
	})
	require.NoError(t, err)
	assert.Equal(t, "en-US", res.Language)
}

func TestUpload_Transcodes(t *testing.T) {
	f := newFixture(t, &fakeTranscoder{}, nil)

	_, err := f.svc.Upload(context.Background(), UploadRequest{
		FileName: "a.m4a", Size: 4, Data: strings.NewReader("M4A!"),
	})
	require.NoError(t, err)
	assert.Equal(t, "WAV16K", f.provider.gotBody)
	assert.Equal(t, "converted.wav", filepath.Base(f.provider.gotReq.FilePath))
}

func TestUpload_TranscodeFailure(t *testing.T) {
	f := newFixture(t, &fakeTranscoder{err: errors.New("ffmpeg: exit status 1")}, nil)

	_, err := f.svc.Upload(context.Background(), UploadRequest{
		FileName: "a.ogg", Size: 4, Data: strings.NewReader("OggS"),
	})
	assert.ErrorIs(t, err, ErrTranscription)
}

func TestUpload_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  UploadRequest
		want error
	}{
		{"no data", UploadRequest{FileName: "a.wav"}, ErrEmptyFile},
		{"no name", UploadRequest{Data: strings.NewReader("x"), Size: 1}, ErrEmptyFile},
		{"empty file", UploadRequest{FileName: "a.wav", Data: strings.NewReader(""), Size: 0}, ErrEmptyFile},
		{"bad extension", UploadRequest{FileName: "notes.txt", Data: strings.NewReader("x"), Size: 1}, ErrUnsupportedType},
		{"no extension", UploadRequest{FileName: "recording", Data: strings.NewReader("x"), Size: 1}, ErrUnsupportedType},
		{"declared too large", UploadRequest{FileName: "a.wav", Data: strings.NewReader("x"), Size: 17}, ErrTooLarge},
		{"async unavailable", UploadRequest{FileName: "a.wav", Data: strings.NewReader("x"), Size: 1, Async: true}, ErrAsyncUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)
			_, err := f.svc.Upload(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpload_StreamExceedsLimit(t *testing.T) {
	f := newFixture(t, nil, nil)

	// Size unknown (-1); the body itself is over the 16 byte limit.
	_, err := f.svc.Upload(context.Background(), UploadRequest{
		FileName: "a.wav", Size: -1, Data: strings.NewReader(strings.Repeat("x", 32)),
	})
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Empty(t, storedObjects(t, f))
}

func TestUpload_TranscriptionFailure(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.provider.err = errors.New("401 unauthorized")

	_, err := f.svc.Upload(context.Background(), UploadRequest{
		FileName: "a.wav", Size: 4, Data: strings.NewReader("RIFF"),
	})
	assert.ErrorIs(t, err, ErrTranscription)
}

func TestUpload_Async(t *testing.T) {
	enq := &fakeEnqueuer{}
	f := newFixture(t, nil, enq)

	res, err := f.svc.Upload(context.Background(), UploadRequest{
		FileName: "memo.wav", Size: 4, Data: strings.NewReader("RIFF"), Language: "de-de", Async: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "task-123", res.TaskID)
	assert.Empty(t, res.Transcript)
	assert.Equal(t, queue.AudioTranscribePayload{
		Bucket: "audio", Path: res.Upload.FileName, FileName: "memo.wav", Language: "de-DE",
	}, enq.got)
	assert.Empty(t, f.provider.gotReq.FilePath, "provider must not run for async uploads")
}

func TestUpload_AsyncEnqueueFailure(t *testing.T) {
	f := newFixture(t, nil, &fakeEnqueuer{err: errors.New("redis down")})

	_, err := f.svc.Upload(context.Background(), UploadRequest{
		FileName: "memo.wav", Size: 4, Data: strings.NewReader("RIFF"), Async: true,
	})
	assert.ErrorContains(t, err, "schedule transcription")
	assert.Empty(t, storedObjects(t, f), "unscheduled upload must be removed")
}

func TestUpload_ConcurrentSameMillisecond(t *testing.T) {
	f := newFixture(t, nil, nil)

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	names := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.svc.Upload(context.Background(), UploadRequest{
				FileName: "clip.wav", Size: 4, Data: strings.NewReader("RIFF"),
			})
			errs[i] = err
			if err == nil {
				names[i] = res.Upload.FileName
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.True(t, strings.HasPrefix(names[i], "1715872323423-"))
		seen[names[i]] = true
	}
	assert.Len(t, seen, n)
	assert.Len(t, storedObjects(t, f), n)
}

func storedObjects(t *testing.T, f *fixture) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(f.store.Root(), "audio"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestTranscribe_MissingObject(t *testing.T) {
	f := newFixture(t, nil, nil)

	_, err := f.svc.Transcribe(context.Background(), "audio", "nope.wav", "en-US")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}
