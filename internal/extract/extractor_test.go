package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedSource plays back one item batch per round. The final batch is
// repeated once the script is exhausted, which is how a real page behaves
// when nothing new renders.
type scriptedSource struct {
	batches       [][]string
	round         int
	loadMoreOK    []bool
	loadMoreCalls int
	scrollCalls   int
}

func (s *scriptedSource) Scroll(context.Context) error {
	s.scrollCalls++
	return nil
}

func (s *scriptedSource) Items(context.Context) ([]string, error) {
	i := s.round
	if i >= len(s.batches) {
		i = len(s.batches) - 1
	}
	s.round++
	if i < 0 {
		return nil, nil
	}
	return s.batches[i], nil
}

func (s *scriptedSource) LoadMore(context.Context) (bool, error) {
	s.loadMoreCalls++
	if s.loadMoreCalls <= len(s.loadMoreOK) {
		return s.loadMoreOK[s.loadMoreCalls-1], nil
	}
	return false, nil
}

// fakeRecord keys on its own value.
type fakeRecord string

func (r fakeRecord) Key() string   { return string(r) }
func (r fakeRecord) Row() []string { return []string{string(r)} }

// fakeBuilder rejects fragments prefixed "skip:" and keys everything else on
// the fragment text, so duplicates collapse naturally.
type fakeBuilder struct{}

func (fakeBuilder) Build(fragment string) (Record, bool) {
	if strings.HasPrefix(fragment, "skip:") {
		return nil, false
	}
	return fakeRecord(fragment), true
}

func TestRun_DedupAndRejectAcrossRepeatedRounds(t *testing.T) {
	// Six fragments rendered on every scan: three distinct keepers, two
	// repeats of the first, one reject. A second identical scan must end
	// the run with exactly three records.
	batch := []string{"alice", "bob", "carol", "alice", "alice", "skip:dave"}
	src := &scriptedSource{batches: [][]string{batch, batch}}

	results, err := NewExtractor(zap.NewNop()).Run(
		context.Background(), src, fakeBuilder{}, 50, 30)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "alice", results[0].Key())
	assert.Equal(t, "bob", results[1].Key())
	assert.Equal(t, "carol", results[2].Key())

	// The repeated scan triggers exactly one load-more attempt before the
	// run declares itself done.
	assert.Equal(t, 1, src.loadMoreCalls)
	assert.Equal(t, 2, src.scrollCalls)
}

func TestRun_StopsAtRecordCap(t *testing.T) {
	src := &scriptedSource{batches: [][]string{{"a", "b", "c", "d", "e"}}}

	results, err := NewExtractor(zap.NewNop()).Run(
		context.Background(), src, fakeBuilder{}, 2, 30)
	require.NoError(t, err)

	assert.Len(t, results, 2)
	assert.Equal(t, 0, src.loadMoreCalls)
}

func TestRun_RoundCeilingBoundsEverGrowingPages(t *testing.T) {
	// The page keeps yielding one new reject per round, so neither the
	// no-progress check nor the cap ever fires. Only the ceiling ends it.
	batches := make([][]string, 40)
	items := []string{}
	for i := range batches {
		items = append(items, "skip:"+strings.Repeat("x", i+1))
		batches[i] = append([]string(nil), items...)
	}
	src := &scriptedSource{
		batches:    batches,
		loadMoreOK: []bool{true, true, true, true, true, true, true, true, true, true},
	}

	results, err := NewExtractor(zap.NewNop()).Run(
		context.Background(), src, fakeBuilder{}, 50, 5)
	require.NoError(t, err)

	assert.Empty(t, results)
	assert.Equal(t, 5, src.scrollCalls)
}

func TestRun_EmptyPageWithNoLoadMoreIsTerminal(t *testing.T) {
	src := &scriptedSource{batches: [][]string{{}}}

	results, err := NewExtractor(zap.NewNop()).Run(
		context.Background(), src, fakeBuilder{}, 50, 30)
	require.NoError(t, err)

	assert.Empty(t, results)
	assert.Equal(t, 1, src.scrollCalls)
	assert.Equal(t, 1, src.loadMoreCalls)
}

func TestRun_LoadMoreUnlocksAnotherBatch(t *testing.T) {
	// A stalled count plus a clickable load-more control keeps the run
	// alive until the expanded batch arrives.
	src := &scriptedSource{
		batches: [][]string{
			{"a"},
			{"a"},
			{"a", "b"},
		},
		loadMoreOK: []bool{true},
	}

	results, err := NewExtractor(zap.NewNop()).Run(
		context.Background(), src, fakeBuilder{}, 50, 30)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "b", results[1].Key())
	// One click to unlock the batch, one failed attempt that ends the run.
	assert.Equal(t, 2, src.loadMoreCalls)
}

func TestRun_NonPositiveBounds(t *testing.T) {
	src := &scriptedSource{batches: [][]string{{"a"}}}
	ex := NewExtractor(zap.NewNop())

	results, err := ex.Run(context.Background(), src, fakeBuilder{}, 0, 30)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = ex.Run(context.Background(), src, fakeBuilder{}, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, src.scrollCalls)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &scriptedSource{batches: [][]string{{"a"}}}
	_, err := NewExtractor(zap.NewNop()).Run(ctx, src, fakeBuilder{}, 50, 30)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderCSV(t *testing.T) {
	out := RenderCSV(CommentHeader, []Record{
		CommentRecord{Name: "Ada, Countess", Headline: "Engineer", ProfileURL: "https://x/in/ada", Email: "ada@x.io"},
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "name,headline,profile_url,email", lines[0])
	assert.Equal(t, `"Ada, Countess",Engineer,https://x/in/ada,ada@x.io`, lines[1])
}
