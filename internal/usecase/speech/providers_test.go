package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/voxcast/voxcast/errors"
	"github.com/voxcast/voxcast/pkg/config"
)

var speechTestParticipants = config.ParticipantList{
	{Name: "Mike", Voice: "en-US-Journey-D", Gender: config.GenderMale, LanguageCode: "en-US"},
	{Name: "Sarah", Voice: "nova", Gender: config.GenderFemale},
	{Name: "Robin", Gender: config.GenderNonBinary},
}

func TestOpenAIVoiceProfiles(t *testing.T) {
	profiles := openAIVoiceProfiles(speechTestParticipants)

	// Unrecognized voice falls back to the gender default.
	if profiles["Mike"] != "onyx" {
		t.Errorf("Mike voice = %q want onyx", profiles["Mike"])
	}
	if profiles["Sarah"] != "nova" {
		t.Errorf("Sarah voice = %q want nova", profiles["Sarah"])
	}
	if profiles["Robin"] != "alloy" {
		t.Errorf("Robin voice = %q want alloy", profiles["Robin"])
	}
}

func TestGoogleVoiceProfiles(t *testing.T) {
	profiles := googleVoiceProfiles(speechTestParticipants)

	mike := profiles["Mike"]
	if mike.Name != "en-US-Journey-D" || mike.SsmlGender != "MALE" || mike.LanguageCode != "en-US" {
		t.Errorf("unexpected profile %+v", mike)
	}

	sarah := profiles["Sarah"]
	if sarah.SsmlGender != "FEMALE" || sarah.LanguageCode != "en-US" {
		t.Errorf("unexpected profile %+v", sarah)
	}

	robin := profiles["Robin"]
	if robin.SsmlGender != "NEUTRAL" {
		t.Errorf("unexpected profile %+v", robin)
	}
}

func TestGoogleSynthesizeSpeech(t *testing.T) {
	audio := []byte("mp3-bytes")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/text:synthesize" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Fatal("missing api key")
		}
		var payload googleSynthesizeRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload.Input.Text != "hello there" {
			t.Fatalf("unexpected text %q", payload.Input.Text)
		}
		if payload.Voice.SsmlGender != "MALE" {
			t.Fatalf("unexpected gender %q", payload.Voice.SsmlGender)
		}
		if payload.AudioConfig.AudioEncoding != "MP3" {
			t.Fatalf("unexpected encoding %q", payload.AudioConfig.AudioEncoding)
		}
		json.NewEncoder(w).Encode(googleSynthesizeResponse{
			AudioContent: base64.StdEncoding.EncodeToString(audio),
		})
	}))
	defer ts.Close()

	synth := NewGoogleSynthesizer(&config.TTSConfig{
		APIKey:       "test-key",
		BaseURL:      ts.URL,
		Participants: speechTestParticipants,
	})

	got, err := synth.SynthesizeSpeech(context.Background(), "hello there", "Mike")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(got) != string(audio) {
		t.Fatalf("unexpected audio %q", got)
	}
}

func TestGoogleSynthesizeSpeech_UnknownSpeaker(t *testing.T) {
	synth := NewGoogleSynthesizer(&config.TTSConfig{APIKey: "k", Participants: speechTestParticipants})

	_, err := synth.SynthesizeSpeech(context.Background(), "hi", "Nobody")
	if err == nil {
		t.Fatal("expected unknown speaker error")
	}
	if !apperrors.HasCode(err, apperrors.ErrorCode_CONFIG_INVALID) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestOpenAISynthesizeSpeech(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Fatal("missing bearer token")
		}
		var payload openAISpeechRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload.Voice != "nova" {
			t.Fatalf("unexpected voice %q", payload.Voice)
		}
		if payload.Model != "tts-1" {
			t.Fatalf("unexpected model %q", payload.Model)
		}
		w.Write([]byte("raw-audio"))
	}))
	defer ts.Close()

	synth := NewOpenAISynthesizer(&config.TTSConfig{
		APIKey:       "test-key",
		BaseURL:      ts.URL,
		Participants: speechTestParticipants,
	})

	got, err := synth.SynthesizeSpeech(context.Background(), "hi", "Sarah")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(got) != "raw-audio" {
		t.Fatalf("unexpected audio %q", got)
	}
}

func TestOpenAISynthesizeSpeech_RateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	synth := NewOpenAISynthesizer(&config.TTSConfig{
		APIKey:       "test-key",
		BaseURL:      ts.URL,
		Participants: speechTestParticipants,
	})

	_, err := synth.SynthesizeSpeech(context.Background(), "hi", "Sarah")
	if !apperrors.HasCode(err, apperrors.ErrorCode_TTS_RATE_LIMITED) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestZyphraSynthesizeSpeech(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/text-to-speech" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Fatal("missing api key header")
		}
		var payload zyphraSpeechRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload.MimeType != "audio/mp3" {
			t.Fatalf("unexpected mime type %q", payload.MimeType)
		}
		if payload.LanguageISOCode != "en-US" {
			t.Fatalf("unexpected language %q", payload.LanguageISOCode)
		}
		w.Write([]byte("zyphra-audio"))
	}))
	defer ts.Close()

	synth := NewZyphraSynthesizer(&config.TTSConfig{
		APIKey:       "test-key",
		BaseURL:      ts.URL,
		Participants: speechTestParticipants,
	})

	got, err := synth.SynthesizeSpeech(context.Background(), "hi", "Mike")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(got) != "zyphra-audio" {
		t.Fatalf("unexpected audio %q", got)
	}
}
