package transcriber

import (
	tapi "github.com/amazingchow/ai-teacher/internal/pkg/transcriber/api"
)

// StaticProvider serves one fixed transcriber instance. Used when no consul
// discovery is configured
type StaticProvider struct {
	real tapi.Transcriber
	srv  string
}

// NewStaticProvider creates a provider around a single whisper-server URL
func NewStaticProvider(url string) (*StaticProvider, error) {
	c, err := NewClient(url)
	if err != nil {
		return nil, err
	}
	return &StaticProvider{real: c, srv: url}, nil
}

func (p *StaticProvider) Get(srv string, allowNew bool) (tapi.Transcriber, string, error) {
	return p.real, p.srv, nil
}
