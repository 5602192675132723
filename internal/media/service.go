package media

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/zapline/whatsapp-server/internal/app"
	"github.com/zapline/whatsapp-server/internal/client"
)

// Service resolves media request payloads into raw bytes plus metadata.
type Service struct {
	app *app.App
}

// NewService creates a new media service
func NewService(app *app.App) *Service {
	return &Service{app: app}
}

// Resolve turns a request into an outbound media payload. The payload comes
// either inline as base64 or from a URL to download.
func (s *Service) Resolve(kind string, req SendMediaRequest) (client.Media, error) {
	media := client.Media{
		Kind:     kind,
		Caption:  req.Caption,
		FileName: req.FileName,
	}

	switch {
	case req.URL != "":
		data, fileName, err := s.download(req.URL)
		if err != nil {
			return client.Media{}, err
		}
		media.Data = data
		if media.FileName == "" {
			media.FileName = fileName
		}
	case req.Media != "":
		data, err := base64.StdEncoding.DecodeString(req.Media)
		if err != nil {
			return client.Media{}, fmt.Errorf("invalid media format")
		}
		media.Data = data
	default:
		return client.Media{}, fmt.Errorf("either media or url must be provided")
	}

	return media, nil
}

// download fetches media bytes from a URL, recovering a filename from the
// path or the Content-Disposition header when possible.
func (s *Service) download(mediaURL string) ([]byte, string, error) {
	resp, err := http.Get(mediaURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download media, status: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read media: %w", err)
	}

	fileName := ""
	if parsed, err := url.Parse(mediaURL); err == nil {
		parts := strings.Split(parsed.Path, "/")
		if last := parts[len(parts)-1]; last != "" {
			fileName = last
		}
	}
	if fileName == "" {
		if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
			if _, params, err := mime.ParseMediaType(disposition); err == nil {
				fileName = params["filename"]
			}
		}
	}

	return data, fileName, nil
}
