package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/voxcast/voxcast/errors"
	"github.com/voxcast/voxcast/pkg/config"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

// openAIVoices is the set of voice names the speech endpoint accepts.
var openAIVoices = map[string]struct{}{
	"alloy": {}, "ash": {}, "coral": {}, "echo": {}, "fable": {},
	"onyx": {}, "nova": {}, "sage": {}, "shimmer": {},
}

type openAISpeechRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	Input string `json:"input"`
}

// OpenAISynthesizer speaks through the OpenAI audio/speech API.
type OpenAISynthesizer struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	voices  map[string]string
}

// NewOpenAISynthesizer creates an OpenAI TTS provider
func NewOpenAISynthesizer(cfg *config.TTSConfig) *OpenAISynthesizer {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "tts-1"
	}
	return &OpenAISynthesizer{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
		voices:  openAIVoiceProfiles(cfg.Participants),
	}
}

// openAIVoiceProfiles maps participants to voices, falling back to a
// gender-appropriate default when the configured voice is not recognized.
func openAIVoiceProfiles(participants []config.Participant) map[string]string {
	defaults := map[config.Gender]string{
		config.GenderMale:      "onyx",
		config.GenderFemale:    "nova",
		config.GenderNonBinary: "alloy",
	}

	profiles := make(map[string]string, len(participants))
	for _, p := range participants {
		if _, ok := openAIVoices[p.Voice]; ok {
			profiles[p.Name] = p.Voice
			continue
		}
		voice, ok := defaults[p.Gender]
		if !ok {
			voice = "alloy"
		}
		profiles[p.Name] = voice
	}
	return profiles
}

// Name identifies the provider in errors and logs.
func (o *OpenAISynthesizer) Name() string { return "openai" }

// SynthesizeSpeech converts text to audio with the speaker's voice
func (o *OpenAISynthesizer) SynthesizeSpeech(ctx context.Context, text, speaker string) ([]byte, error) {
	voice, ok := o.voices[speaker]
	if !ok {
		return nil, apperrors.ErrUnknownSpeaker(speaker)
	}

	body, err := json.Marshal(openAISpeechRequest{
		Model: o.model,
		Voice: voice,
		Input: text,
	})
	if err != nil {
		return nil, apperrors.ErrSynthesisFailed(speaker, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.ErrSynthesisFailed(speaker, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, apperrors.ErrSynthesisFailed(speaker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		return nil, apperrors.ErrRateLimited(o.Name())
	}
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.ErrSynthesisFailed(speaker, fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ErrSynthesisFailed(speaker, err)
	}
	return audio, nil
}
