package consul

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/amazingchow/ai-teacher/internal/pkg/transcriber"
	tapi "github.com/amazingchow/ai-teacher/internal/pkg/transcriber/api"
	"github.com/hashicorp/consul/api"
	"go.uber.org/multierr"
)

const priorityKey = "priority"

// Provider keeps track of live whisper-server instances registered in consul.
// One transcriber client per instance is built and reused - the heavyweight
// model lives on the server side, the handle here is created once
type Provider struct {
	consul  *api.Client
	srvName string

	lock  *sync.RWMutex
	trans []*trWrap
}

type trWrap struct {
	real     tapi.Transcriber
	srv      string
	priority float64
}

// NewProvider creates consul based transcriber provider
func NewProvider(cfg *api.Config, srvNameInConsul string) (*Provider, error) {
	c, err := api.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if srvNameInConsul == "" {
		return nil, fmt.Errorf("no srv name")
	}
	return newProvider(c, srvNameInConsul), nil
}

func newProvider(c *api.Client, srvNameInConsul string) *Provider {
	goapp.Log.Info().Str("service", srvNameInConsul).Msg("cfg: srv name in consul")
	return &Provider{consul: c, srvName: srvNameInConsul, lock: &sync.RWMutex{}, trans: make([]*trWrap, 0)}
}

// Get returns a transcriber instance. If srv matches a known instance the
// same one is returned, else one is selected randomly by priority
func (c *Provider) Get(srv string, allowNew bool) (tapi.Transcriber, string, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if !allowNew {
		for _, t := range c.trans {
			if t.srv == srv {
				return t.real, t.srv, nil
			}
		}
		return nil, "", fmt.Errorf("no active srv `%s`", srv)
	}
	if len(c.trans) == 0 {
		return nil, "", fmt.Errorf("no active transcriber")
	}
	for _, t := range c.trans {
		if t.srv == srv {
			return t.real, t.srv, nil
		}
	}
	if len(c.trans) == 1 {
		t := c.trans[0]
		return t.real, t.srv, nil
	}
	i, err := getRandomByPriority(c.trans)
	if err != nil {
		return nil, "", fmt.Errorf("can't select transcriber: %v", err)
	}
	if i < len(c.trans) {
		t := c.trans[i]
		return t.real, t.srv, nil
	}
	return nil, "", fmt.Errorf("no active transcriber")
}

func getRandomByPriority(trWraps []*trWrap) (int, error) {
	prMax := 0.0
	for _, tr := range trWraps {
		prMax += tr.priority
	}
	if prMax < 0.1 {
		return 0, fmt.Errorf("wrong priority sum found %f", prMax)
	}
	rnd := rand.Float64() * prMax
	prMax = 0.0
	for i, tr := range trWraps {
		prMax += tr.priority
		if prMax > rnd {
			return i, nil
		}
	}
	return len(trWraps), nil
}

// StartRegistryLoop starts the consul polling loop
func (c *Provider) StartRegistryLoop(ctx context.Context, checkInterval time.Duration) (<-chan struct{}, error) {
	goapp.Log.Info().Msgf("Starting consul service check every %v", checkInterval)
	res := make(chan struct{}, 2)
	go func() {
		defer close(res)
		c.serviceLoop(ctx, checkInterval)
	}()
	return res, nil
}

func (c *Provider) serviceLoop(ctx context.Context, checkInterval time.Duration) {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()
	for {
		if err := c.check(ctx); err != nil {
			goapp.Log.Error().Err(err).Msg("consul check failed")
		}
		select {
		case <-ctx.Done():
			goapp.Log.Info().Msg("exit consul registry loop")
			return
		case <-ticker.C:
		}
	}
}

func (c *Provider) check(ctx context.Context) error {
	entries, _, err := c.consul.Health().Service(c.srvName, "", true, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return fmt.Errorf("can't get consul services: %w", err)
	}
	var errAll error
	// wraps published earlier may be read concurrently, so fresh ones
	// are built here and swapped in under the write lock
	res := make([]*trWrap, 0, len(entries))
	for _, e := range entries {
		srv := fmt.Sprintf("http://%s:%d/inference", e.Service.Address, e.Service.Port)
		real := c.findClient(srv)
		if real == nil {
			real, err = transcriber.NewClient(srv)
			if err != nil {
				errAll = multierr.Append(errAll, fmt.Errorf("can't init transcriber '%s': %w", srv, err))
				continue
			}
			goapp.Log.Info().Str("url", srv).Msg("new transcriber instance")
		}
		res = append(res, &trWrap{real: real, srv: srv, priority: parsePriority(e.Service.Meta)})
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	c.trans = res
	return errAll
}

func (c *Provider) findClient(srv string) tapi.Transcriber {
	c.lock.RLock()
	defer c.lock.RUnlock()
	for _, t := range c.trans {
		if t.srv == srv {
			return t.real
		}
	}
	return nil
}

func parsePriority(meta map[string]string) float64 {
	if v, ok := meta[priorityKey]; ok {
		if res, err := strconv.ParseFloat(v, 64); err == nil {
			return res
		}
	}
	return 1
}
