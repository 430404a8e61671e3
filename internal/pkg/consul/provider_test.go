package consul

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Empty(t *testing.T) {
	p := newProvider(nil, "srv")
	_, _, err := p.Get("", true)
	assert.NotNil(t, err)
}

func TestGet_Same(t *testing.T) {
	p := newProvider(nil, "srv")
	p.trans = []*trWrap{{srv: "url1", priority: 1}, {srv: "url2", priority: 1}}
	_, srv, err := p.Get("url2", true)
	require.Nil(t, err)
	assert.Equal(t, "url2", srv)
}

func TestGet_NoNew(t *testing.T) {
	p := newProvider(nil, "srv")
	p.trans = []*trWrap{{srv: "url1", priority: 1}}
	_, _, err := p.Get("url2", false)
	assert.NotNil(t, err)
	_, srv, err := p.Get("url1", false)
	require.Nil(t, err)
	assert.Equal(t, "url1", srv)
}

func TestGet_Selects(t *testing.T) {
	p := newProvider(nil, "srv")
	p.trans = []*trWrap{{srv: "url1", priority: 1}, {srv: "url2", priority: 1}}
	_, srv, err := p.Get("", true)
	require.Nil(t, err)
	assert.Contains(t, []string{"url1", "url2"}, srv)
}

func TestGetRandomByPriority(t *testing.T) {
	wraps := []*trWrap{{srv: "url1", priority: 0}, {srv: "url2", priority: 1}}
	for i := 0; i < 20; i++ {
		at, err := getRandomByPriority(wraps)
		require.Nil(t, err)
		assert.Equal(t, 1, at)
	}
}

func TestGetRandomByPriority_FailZero(t *testing.T) {
	wraps := []*trWrap{{srv: "url1", priority: 0}}
	_, err := getRandomByPriority(wraps)
	assert.NotNil(t, err)
}

func TestGet_ConcurrentRefresh(t *testing.T) {
	p := newProvider(nil, "srv")
	p.trans = []*trWrap{{srv: "url1", priority: 1}, {srv: "url2", priority: 2}}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			refreshed := []*trWrap{{srv: "url1", priority: float64(i%3 + 1)},
				{srv: "url2", priority: 1}}
			p.lock.Lock()
			p.trans = refreshed
			p.lock.Unlock()
		}
	}()
	for i := 0; i < 200; i++ {
		_, srv, err := p.Get("", true)
		require.Nil(t, err)
		assert.Contains(t, []string{"url1", "url2"}, srv)
	}
	<-done
}

func TestParsePriority(t *testing.T) {
	assert.InDelta(t, 1.0, parsePriority(nil), 0.0001)
	assert.InDelta(t, 2.5, parsePriority(map[string]string{"priority": "2.5"}), 0.0001)
	assert.InDelta(t, 1.0, parsePriority(map[string]string{"priority": "olia"}), 0.0001)
}
