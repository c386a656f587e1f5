package xsd

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySource struct {
	docs  map[string]string
	loads atomic.Int32
	scope string
}

func (s *memorySource) Load(_ context.Context, location string) (*etree.Document, error) {
	s.loads.Add(1)
	text, ok := s.docs[location]
	if !ok {
		return nil, &DocumentSourceError{Location: location, Cause: errors.New("no such document")}
	}
	return ParseXML([]byte(text))
}

func (s *memorySource) Prefixes() map[string]string { return nil }

type scopedSource struct {
	*memorySource
}

func (s scopedSource) CacheKey(location string) string {
	return s.scope + "#" + location
}

// blockingSource holds every load until release is closed or the load
// context is done.
type blockingSource struct {
	memorySource
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingSource) Load(ctx context.Context, location string) (*etree.Document, error) {
	s.once.Do(func() { close(s.started) })
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.release:
	}
	return s.memorySource.Load(ctx, location)
}

const tinySchema = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:tiny">
	<xs:element name="root" type="xs:string"/>
</xs:schema>`

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: `a\b\c.xsd`, want: "a/b/c.xsd"},
		{in: "a/./b/../c.xsd", want: "a/c.xsd"},
		{in: "http://host/x/../y.xsd", want: "http://host/y.xsd"},
		{in: "plain.xsd", want: "plain.xsd"},
		{in: "../escape.xsd", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeLocation(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidLocation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCache_SharesParserAcrossSpellings(t *testing.T) {
	src := &memorySource{docs: map[string]string{"dir/tiny.xsd": tinySchema}}
	cache := NewCache()

	first, err := cache.Get(context.Background(), "dir/tiny.xsd", src)
	require.NoError(t, err)
	second, err := cache.Get(context.Background(), `dir\sub\..\tiny.xsd`, src)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, int32(1), src.loads.Load())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
	third, err := cache.Get(context.Background(), "dir/tiny.xsd", src)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestCache_ConcurrentGetPublishesOneParser(t *testing.T) {
	src := &memorySource{docs: map[string]string{"tiny.xsd": tinySchema}}
	cache := NewCache()

	const workers = 16
	parsers := make([]*Parser, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := cache.Get(context.Background(), "tiny.xsd", src)
			assert.NoError(t, err)
			parsers[i] = p
		}(i)
	}
	wg.Wait()

	for _, p := range parsers[1:] {
		assert.Same(t, parsers[0], p)
	}
	assert.Equal(t, 1, cache.Len())
}

func TestCache_CanceledCallerDoesNotFailOthers(t *testing.T) {
	src := &blockingSource{
		memorySource: memorySource{docs: map[string]string{"tiny.xsd": tinySchema}},
		started:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	cache := NewCache()

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx, "tiny.xsd", src)
		firstErr <- err
	}()
	<-src.started

	type result struct {
		p   *Parser
		err error
	}
	second := make(chan result, 1)
	go func() {
		p, err := cache.Get(context.Background(), "tiny.xsd", src)
		second <- result{p, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(src.release)
	r := <-second
	require.NoError(t, r.err)
	require.NotNil(t, r.p)
	assert.Equal(t, "urn:tiny", r.p.TargetNamespace())
	assert.Equal(t, int32(1), src.loads.Load())
	assert.Equal(t, 1, cache.Len())
}

func TestCache_ScopedKeys(t *testing.T) {
	docs := map[string]string{"urn:tiny": tinySchema}
	a := scopedSource{&memorySource{docs: docs, scope: "a.wsdl"}}
	b := scopedSource{&memorySource{docs: docs, scope: "b.wsdl"}}
	cache := NewCache()

	pa, err := cache.Get(context.Background(), "urn:tiny", a)
	require.NoError(t, err)
	pb, err := cache.Get(context.Background(), "urn:tiny", b)
	require.NoError(t, err)

	assert.NotSame(t, pa, pb)
	assert.Equal(t, 2, cache.Len())
}

func TestCache_ConcurrentParse(t *testing.T) {
	cache := NewCache()
	p, err := cache.Get(context.Background(), "testdata/Recursive.xsd", NewFileSource())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Node, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := p.Parse(context.Background(), "folder")
			assert.NoError(t, err)
			results[i] = n
		}(i)
	}
	wg.Wait()

	final, err := p.Parse(context.Background(), "folder")
	require.NoError(t, err)
	for _, n := range results {
		require.NotNil(t, n)
		assert.Equal(t, final.DumpTree(), n.DumpTree())
	}
}
