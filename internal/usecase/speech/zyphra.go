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

const defaultZyphraBaseURL = "https://api.zyphra.com"

type zyphraVoice struct {
	Voice        string
	Gender       string
	LanguageCode string
}

type zyphraSpeechRequest struct {
	Text            string `json:"text"`
	VoiceName       string `json:"voice_name,omitempty"`
	LanguageISOCode string `json:"language_iso_code"`
	MimeType        string `json:"mime_type"`
}

// ZyphraSynthesizer speaks through the Zyphra text-to-speech API.
type ZyphraSynthesizer struct {
	apiKey  string
	baseURL string
	client  *http.Client
	voices  map[string]zyphraVoice
}

// NewZyphraSynthesizer creates a Zyphra TTS provider
func NewZyphraSynthesizer(cfg *config.TTSConfig) *ZyphraSynthesizer {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultZyphraBaseURL
	}
	return &ZyphraSynthesizer{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		voices:  zyphraVoiceProfiles(cfg.Participants),
	}
}

func zyphraVoiceProfiles(participants []config.Participant) map[string]zyphraVoice {
	profiles := make(map[string]zyphraVoice, len(participants))
	for _, p := range participants {
		lang := p.LanguageCode
		if lang == "" {
			lang = "en-US"
		}
		profiles[p.Name] = zyphraVoice{
			Voice:        p.Voice,
			Gender:       zyphraGender(p.Gender),
			LanguageCode: lang,
		}
	}
	return profiles
}

func zyphraGender(g config.Gender) string {
	switch g {
	case config.GenderFemale:
		return "female"
	case config.GenderMale:
		return "male"
	default:
		return "neutral"
	}
}

// Name identifies the provider in errors and logs.
func (z *ZyphraSynthesizer) Name() string { return "zyphra" }

// SynthesizeSpeech converts text to MP3 audio with the speaker's voice
func (z *ZyphraSynthesizer) SynthesizeSpeech(ctx context.Context, text, speaker string) ([]byte, error) {
	voice, ok := z.voices[speaker]
	if !ok {
		return nil, apperrors.ErrUnknownSpeaker(speaker)
	}

	body, err := json.Marshal(zyphraSpeechRequest{
		Text:            text,
		VoiceName:       voice.Voice,
		LanguageISOCode: voice.LanguageCode,
		MimeType:        "audio/mp3",
	})
	if err != nil {
		return nil, apperrors.ErrSynthesisFailed(speaker, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.baseURL+"/v1/audio/text-to-speech", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.ErrSynthesisFailed(speaker, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", z.apiKey)

	resp, err := z.client.Do(req)
	if err != nil {
		return nil, apperrors.ErrSynthesisFailed(speaker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		return nil, apperrors.ErrRateLimited(z.Name())
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
