package staticanalysis

import (
	"errors"
	"testing"

	"github.com/joeycumines/escapesentry/internal/model"
	"github.com/stretchr/testify/require"
)

func findingKinds(findings []model.EscapeFinding) []model.FindingKind {
	kinds := make([]model.FindingKind, len(findings))
	for i, f := range findings {
		kinds[i] = f.Kind
	}
	return kinds
}

func TestAnalyze_returnEscape(t *testing.T) {
	src := `package sample

func LeakReturn() []int {
	data := []int{1, 2, 3}
	return data
}
`
	findings, err := Analyze("sample.go", src, "LeakReturn")
	require.NoError(t, err)
	require.Contains(t, findingKinds(findings), model.FindingReturn)
}

func TestAnalyze_globalEscape(t *testing.T) {
	src := `package sample

var counter int

func BumpGlobal() {
	counter = counter + 1
}
`
	findings, err := Analyze("sample.go", src, "BumpGlobal")
	require.NoError(t, err)
	require.Contains(t, findingKinds(findings), model.FindingGlobal)
}

func TestAnalyze_closureCapture(t *testing.T) {
	src := `package sample

func SpawnClosure() {
	total := 0
	go func() {
		total++
	}()
}
`
	findings, err := Analyze("sample.go", src, "SpawnClosure")
	require.NoError(t, err)
	require.Contains(t, findingKinds(findings), model.FindingClosure)
}

func TestAnalyze_unjoinedWaitGroup(t *testing.T) {
	src := `package sample

import "sync"

func LeakWaitGroup() {
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
	}()
}
`
	findings, err := Analyze("sample.go", src, "LeakWaitGroup")
	require.NoError(t, err)
	require.Contains(t, findingKinds(findings), model.FindingConcurrency)
}

func TestAnalyze_joinedWaitGroupIsClean(t *testing.T) {
	src := `package sample

import "sync"

func JoinedWaitGroup() {
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
	}()
	wg.Wait()
}
`
	findings, err := Analyze("sample.go", src, "JoinedWaitGroup")
	require.NoError(t, err)
	require.NotContains(t, findingKinds(findings), model.FindingConcurrency)
}

func TestAnalyze_channelReceiveCountsAsJoin(t *testing.T) {
	src := `package sample

func JoinedChannel() {
	done := make(chan struct{})
	go func() {
		close(done)
	}()
	<-done
}
`
	findings, err := Analyze("sample.go", src, "JoinedChannel")
	require.NoError(t, err)
	require.NotContains(t, findingKinds(findings), model.FindingConcurrency)
}

func TestAnalyze_parameterEscape(t *testing.T) {
	src := `package sample

import "sync"

func leakToHelper(wg *sync.WaitGroup) {}

func PassHandleAway() {
	wg := &sync.WaitGroup{}
	wg.Add(1)
	leakToHelper(wg)
}
`
	findings, err := Analyze("sample.go", src, "PassHandleAway")
	require.NoError(t, err)
	require.Contains(t, findingKinds(findings), model.FindingParameter)
}

func TestAnalyze_heapAllocationLowConfidence(t *testing.T) {
	src := `package sample

type widget struct{}

func newWidget() *widget { return &widget{} }

func AllocateWidget() {
	w := newWidget()
	_ = w
}
`
	findings, err := Analyze("sample.go", src, "AllocateWidget")
	require.NoError(t, err)
	for _, f := range findings {
		if f.Kind == model.FindingHeap {
			require.Equal(t, model.ConfidenceLow, f.Confidence)
			return
		}
	}
	t.Fatal("expected a heap finding")
}

func TestAnalyze_functionNotFound(t *testing.T) {
	_, err := Analyze("sample.go", "package sample\n", "Missing")
	require.Error(t, err)
	var notFound *model.TargetNotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestAnalyze_parseFailure(t *testing.T) {
	_, err := Analyze("sample.go", "this is not valid go source {{{", "Fn")
	require.Error(t, err)
	var parseErr *model.ParseFailureError
	require.True(t, errors.As(err, &parseErr))
}

func TestAnalyze_isIdempotent(t *testing.T) {
	src := `package sample

func LeakReturn() int {
	x := 1
	return x
}
`
	first, err := Analyze("sample.go", src, "LeakReturn")
	require.NoError(t, err)
	second, err := Analyze("sample.go", src, "LeakReturn")
	require.NoError(t, err)
	require.Equal(t, first, second)
}
