package media

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapline/whatsapp-server/internal/app"
	"github.com/zapline/whatsapp-server/internal/client"
	"github.com/zapline/whatsapp-server/internal/config"
)

func newTestService() *Service {
	return NewService(app.NewApp(config.NewConfig(), zerolog.Nop()))
}

func TestResolveInlineBase64(t *testing.T) {
	svc := newTestService()

	payload := []byte("fake image bytes")
	media, err := svc.Resolve(client.MediaKindImage, SendMediaRequest{
		Media:    base64.StdEncoding.EncodeToString(payload),
		Caption:  "team photo",
		FileName: "team.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, client.MediaKindImage, media.Kind)
	assert.Equal(t, payload, media.Data)
	assert.Equal(t, "team photo", media.Caption)
	assert.Equal(t, "team.jpg", media.FileName)
}

func TestResolveInvalidBase64(t *testing.T) {
	svc := newTestService()

	_, err := svc.Resolve(client.MediaKindImage, SendMediaRequest{Media: "not base64!!!"})
	assert.EqualError(t, err, "invalid media format")
}

func TestResolveRequiresMediaOrURL(t *testing.T) {
	svc := newTestService()

	_, err := svc.Resolve(client.MediaKindFile, SendMediaRequest{})
	assert.EqualError(t, err, "either media or url must be provided")
}

func TestResolveFromURL(t *testing.T) {
	payload := []byte("%PDF-1.4 fake document")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	svc := newTestService()
	media, err := svc.Resolve(client.MediaKindFile, SendMediaRequest{URL: srv.URL + "/reports/q3.pdf"})
	require.NoError(t, err)
	assert.Equal(t, payload, media.Data)
	assert.Equal(t, "q3.pdf", media.FileName)
}

func TestResolveFromURLKeepsExplicitFileName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data"))
	}))
	defer srv.Close()

	svc := newTestService()
	media, err := svc.Resolve(client.MediaKindFile, SendMediaRequest{
		URL:      srv.URL + "/download/original.bin",
		FileName: "renamed.bin",
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed.bin", media.FileName)
}

func TestResolveFromURLNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := newTestService()
	_, err := svc.Resolve(client.MediaKindFile, SendMediaRequest{URL: srv.URL + "/missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to download media")
}
