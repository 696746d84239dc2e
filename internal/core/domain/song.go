package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Song is an uploaded track whose audio the analysis service can fetch.
type Song struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist,omitempty"`
	AudioURL string `json:"audio_url"`
}

func NewSong(id, title, artist, audioURL string) (Song, error) {
	if id == "" || strings.TrimSpace(title) == "" {
		return Song{}, fmt.Errorf("%w: id and title are required", ErrInvalidSong)
	}
	u, err := url.Parse(audioURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Song{}, fmt.Errorf("%w: audio_url must be an absolute http(s) URL", ErrInvalidSong)
	}
	return Song{
		ID:       id,
		Title:    strings.TrimSpace(title),
		Artist:   strings.TrimSpace(artist),
		AudioURL: audioURL,
	}, nil
}
