package download

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundroom/soundroom/internal/provider/dab"
	"github.com/soundroom/soundroom/internal/room"
)

// setupEndToEnd wires a real dab client against a mock provider that
// serves both the stream resolution and the audio payload.
func setupEndToEnd(t *testing.T, payload []byte) (*Handlers, *room.Store, *recordingNotifier) {
	t.Helper()

	var providerURL string
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stream":
			json.NewEncoder(w).Encode(map[string]string{"url": providerURL + "/cdn/track"})
		case "/cdn/track":
			w.Write(payload)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(provider.Close)
	providerURL = provider.URL

	cfg := testConfig()
	cfg.Provider.BaseURL = provider.URL

	client := dab.NewClient(cfg.Provider, zerolog.Nop())
	store := room.NewStore(t.TempDir(), zerolog.Nop())
	notifier := &recordingNotifier{}

	service := NewService(client, store, cfg, zerolog.Nop())
	service.SetNotifier(notifier)

	return NewHandlers(service), store, notifier
}

func doDownload(t *testing.T, h *Handlers, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/download", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Download(c); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	return rec
}

func TestHandlers_Download(t *testing.T) {
	payload := bytes.Repeat([]byte{0x42}, 200)
	handlers, store, notifier := setupEndToEnd(t, payload)

	rec := doDownload(t, handlers, `{"name":"Song.flac","trackId":42,"roomId":"abc"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp["success"])

	// Exactly one NEW_AUDIO_SOURCE broadcast, to room abc, with a
	// fileID under the room namespace.
	require.Len(t, notifier.events, 1)
	assert.Equal(t, []string{"abc"}, notifier.roomIDs)
	event := notifier.events[0]
	assert.Equal(t, room.EventNewAudioSource, event.Type)
	assert.Regexp(t, fileIDPattern, event.ID)
	assert.Equal(t, "Song.flac", event.Title)
	assert.Equal(t, "abc", event.AddedBy)

	data, err := os.ReadFile(filepath.Join(store.Root(), event.ID))
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestHandlers_Download_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `not json`},
		{"missing name", `{"trackId":42,"roomId":"abc"}`},
		{"empty name", `{"name":"","trackId":42,"roomId":"abc"}`},
		{"missing trackId", `{"name":"Song.flac","roomId":"abc"}`},
		{"string trackId", `{"name":"Song.flac","trackId":"42","roomId":"abc"}`},
		{"missing roomId", `{"name":"Song.flac","trackId":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers, _, notifier := setupEndToEnd(t, []byte("audio"))
			rec := doDownload(t, handlers, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, notifier.events)
		})
	}
}

func TestHandlers_Download_ProviderFailure(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer provider.Close()

	cfg := testConfig()
	cfg.Provider.BaseURL = provider.URL

	client := dab.NewClient(cfg.Provider, zerolog.Nop())
	store := room.NewStore(t.TempDir(), zerolog.Nop())
	notifier := &recordingNotifier{}
	service := NewService(client, store, cfg, zerolog.Nop())
	service.SetNotifier(notifier)

	rec := doDownload(t, NewHandlers(service), `{"name":"Song.flac","trackId":42,"roomId":"abc"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, notifier.events)

	// A failed resolve must not leave a room namespace behind.
	_, statErr := os.Stat(store.RoomDir("abc"))
	assert.True(t, os.IsNotExist(statErr))
}
