package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/voxcast/voxcast/errors"
	"github.com/voxcast/voxcast/pkg/config"
)

const defaultGoogleBaseURL = "https://texttospeech.googleapis.com"

type googleVoice struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name,omitempty"`
	SsmlGender   string `json:"ssmlGender"`
}

type googleSynthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice       googleVoice `json:"voice"`
	AudioConfig struct {
		AudioEncoding    string   `json:"audioEncoding"`
		EffectsProfileID []string `json:"effectsProfileId,omitempty"`
	} `json:"audioConfig"`
}

type googleSynthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// GoogleSynthesizer speaks through the Google Cloud Text-to-Speech REST API.
type GoogleSynthesizer struct {
	apiKey  string
	baseURL string
	client  *http.Client
	voices  map[string]googleVoice
}

// NewGoogleSynthesizer creates a Google Cloud TTS provider
func NewGoogleSynthesizer(cfg *config.TTSConfig) *GoogleSynthesizer {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGoogleBaseURL
	}
	return &GoogleSynthesizer{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		voices:  googleVoiceProfiles(cfg.Participants),
	}
}

// googleVoiceProfiles maps each participant to voice selection parameters.
func googleVoiceProfiles(participants []config.Participant) map[string]googleVoice {
	profiles := make(map[string]googleVoice, len(participants))
	for _, p := range participants {
		lang := p.LanguageCode
		if lang == "" {
			lang = "en-US"
		}
		profiles[p.Name] = googleVoice{
			LanguageCode: lang,
			Name:         p.Voice,
			SsmlGender:   googleGender(p.Gender),
		}
	}
	return profiles
}

func googleGender(g config.Gender) string {
	switch g {
	case config.GenderFemale:
		return "FEMALE"
	case config.GenderMale:
		return "MALE"
	default:
		return "NEUTRAL"
	}
}

// Name identifies the provider in errors and logs.
func (g *GoogleSynthesizer) Name() string { return "google" }

// SynthesizeSpeech converts text to MP3 audio with the speaker's voice
func (g *GoogleSynthesizer) SynthesizeSpeech(ctx context.Context, text, speaker string) ([]byte, error) {
	voice, ok := g.voices[speaker]
	if !ok {
		return nil, apperrors.ErrUnknownSpeaker(speaker)
	}

	var payload googleSynthesizeRequest
	payload.Input.Text = text
	payload.Voice = voice
	payload.AudioConfig.AudioEncoding = "MP3"
	payload.AudioConfig.EffectsProfileID = []string{"headphone-class-device"}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.ErrSynthesisFailed(speaker, err)
	}

	url := fmt.Sprintf("%s/v1/text:synthesize?key=%s", g.baseURL, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.ErrSynthesisFailed(speaker, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, apperrors.ErrSynthesisFailed(speaker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		return nil, apperrors.ErrRateLimited(g.Name())
	}
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.ErrSynthesisFailed(speaker, fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}

	var decoded googleSynthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, apperrors.ErrSynthesisFailed(speaker, err)
	}

	audio, err := base64.StdEncoding.DecodeString(decoded.AudioContent)
	if err != nil {
		return nil, apperrors.ErrSynthesisFailed(speaker, err)
	}
	return audio, nil
}
