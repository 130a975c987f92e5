package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bosocmputer/guarantee_letter_gemini/internal/common"
	"github.com/bosocmputer/guarantee_letter_gemini/internal/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedInvoker replays a fixed sequence of responses, recording which
// model each call went to.
type scriptedInvoker struct {
	responses []scriptedResponse
	calls     []string
}

type scriptedResponse struct {
	text   string
	tokens *common.TokenUsage
	err    error
}

func (s *scriptedInvoker) Invoke(_ context.Context, modelName, _ string, _ []processor.PageImage) (string, *common.TokenUsage, error) {
	s.calls = append(s.calls, modelName)
	if len(s.calls) > len(s.responses) {
		return "", nil, errors.New("invoker called more times than scripted")
	}
	resp := s.responses[len(s.calls)-1]
	return resp.text, resp.tokens, resp.err
}

func newTestOrchestrator(t *testing.T, invoker ModelInvoker, candidates []string) (*Orchestrator, *[]time.Duration) {
	t.Helper()
	orch, err := NewOrchestrator(invoker, OrchestratorConfig{Candidates: candidates})
	require.NoError(t, err)

	var waits []time.Duration
	orch.wait = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return orch, &waits
}

func testPages() []processor.PageImage {
	return []processor.PageImage{{Number: 1, Data: []byte("png"), MIMEType: "image/png"}}
}

func repeatResponse(r scriptedResponse, n int) []scriptedResponse {
	out := make([]scriptedResponse, n)
	for i := range out {
		out[i] = r
	}
	return out
}

func TestExtractSucceedsFirstCall(t *testing.T) {
	invoker := &scriptedInvoker{responses: []scriptedResponse{
		{text: `{"bank_name": "Ajman Bank"}`, tokens: &common.TokenUsage{InputTokens: 100, OutputTokens: 20, TotalTokens: 120}},
	}}
	orch, waits := newTestOrchestrator(t, invoker, []string{"model-a", "model-b"})

	fields, usage, err := orch.Extract(context.Background(), common.NewRequestContext("s1"), TenderBond, testPages())
	require.NoError(t, err)

	assert.Equal(t, "Ajman Bank", fields.BankName)
	assert.Equal(t, []string{"model-a"}, invoker.calls)
	assert.Empty(t, *waits, "a first-call success must not trigger any backoff")
	assert.Equal(t, 120, usage.TotalTokens)
}

func TestExtractFallsBackToSecondModel(t *testing.T) {
	fail := scriptedResponse{err: errors.New("503 service unavailable")}
	responses := append(repeatResponse(fail, 3),
		scriptedResponse{text: `{"bank_name": "Emirates NBD"}`})
	invoker := &scriptedInvoker{responses: responses}
	orch, waits := newTestOrchestrator(t, invoker, []string{"model-a", "model-b"})

	fields, _, err := orch.Extract(context.Background(), common.NewRequestContext("s1"), TenderBond, testPages())
	require.NoError(t, err)

	assert.Equal(t, "Emirates NBD", fields.BankName)
	assert.Equal(t, []string{"model-a", "model-a", "model-a", "model-b"}, invoker.calls,
		"exactly 3 attempts on the first model, then one on the second")
	assert.Equal(t, []time.Duration{3 * time.Second, 6 * time.Second}, *waits,
		"backoff is the fixed 3s/6s table, with no wait after the final attempt")
}

func TestExtractAllCandidatesExhausted(t *testing.T) {
	fail := scriptedResponse{err: errors.New("model is overloaded")}
	invoker := &scriptedInvoker{responses: repeatResponse(fail, 12)}
	candidates := []string{"model-a", "model-b", "model-c", "model-d"}
	orch, waits := newTestOrchestrator(t, invoker, candidates)

	_, _, err := orch.Extract(context.Background(), common.NewRequestContext("s1"), PerformanceBond, testPages())

	var extractionErr *ExtractionFailedError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, 4, extractionErr.Candidates)
	assert.Equal(t, 12, extractionErr.TotalCalls)
	assert.Len(t, invoker.calls, 12, "4 candidates x 3 attempts, never more")
	assert.Len(t, *waits, 8, "two backoff waits per candidate")
}

func TestExtractUnparseableResponseConsumesAttempts(t *testing.T) {
	// A 200 with garbage text spends the attempt exactly like a transport
	// failure would.
	responses := []scriptedResponse{
		{text: "no json here", tokens: &common.TokenUsage{TotalTokens: 50}},
		{text: `{"amount": "75,000.00"}`, tokens: &common.TokenUsage{TotalTokens: 60}},
	}
	invoker := &scriptedInvoker{responses: responses}
	orch, waits := newTestOrchestrator(t, invoker, []string{"model-a"})

	fields, usage, err := orch.Extract(context.Background(), common.NewRequestContext("s1"), TenderBond, testPages())
	require.NoError(t, err)

	assert.Equal(t, "75,000.00", fields.Amount)
	assert.Equal(t, []string{"model-a", "model-a"}, invoker.calls)
	assert.Equal(t, []time.Duration{3 * time.Second}, *waits)
	assert.Equal(t, 110, usage.TotalTokens, "token usage accumulates across failed attempts too")
}

func TestExtractBackfillsMissingKeys(t *testing.T) {
	invoker := &scriptedInvoker{responses: []scriptedResponse{
		{text: `{"bank_name": "Mashreq", "guarantee_type": "Tender Bond Guarantee"}`},
	}}
	orch, _ := newTestOrchestrator(t, invoker, []string{"model-a"})

	fields, _, err := orch.Extract(context.Background(), common.NewRequestContext("s1"), TenderBond, testPages())
	require.NoError(t, err)

	assert.Equal(t, "Mashreq", fields.BankName)
	assert.Empty(t, fields.Amount)
	assert.Empty(t, fields.GuaranteeNumber)
	assert.Empty(t, fields.GuaranteeTypeAr)

	m := fields.ToMap()
	for _, key := range FieldKeys {
		_, present := m[key]
		assert.True(t, present, "key %s must always be present", key)
	}
	_, echoed := m["guarantee_type"]
	assert.False(t, echoed, "the English guarantee_type echo is dropped")
}

func TestExtractNoPages(t *testing.T) {
	invoker := &scriptedInvoker{}
	orch, _ := newTestOrchestrator(t, invoker, []string{"model-a"})

	_, _, err := orch.Extract(context.Background(), common.NewRequestContext("s1"), TenderBond, nil)
	require.Error(t, err)
	assert.Empty(t, invoker.calls)
}

func TestExtractContextCanceledDuringWait(t *testing.T) {
	fail := scriptedResponse{err: errors.New("429 too many requests")}
	invoker := &scriptedInvoker{responses: repeatResponse(fail, 3)}
	orch, err := NewOrchestrator(invoker, OrchestratorConfig{Candidates: []string{"model-a"}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	orch.wait = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return waitWithContext(ctx, time.Millisecond)
	}

	_, _, err = orch.Extract(ctx, common.NewRequestContext("s1"), TenderBond, testPages())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, invoker.calls, 1, "cancellation during backoff stops further calls")
}

func TestNewOrchestratorValidation(t *testing.T) {
	_, err := NewOrchestrator(nil, OrchestratorConfig{Candidates: []string{"m"}})
	assert.Error(t, err)

	_, err = NewOrchestrator(&scriptedInvoker{}, OrchestratorConfig{})
	assert.Error(t, err)
}

func TestNewOrchestratorCopiesCandidates(t *testing.T) {
	candidates := []string{"model-a", "model-b"}
	orch, err := NewOrchestrator(&scriptedInvoker{}, OrchestratorConfig{Candidates: candidates})
	require.NoError(t, err)

	candidates[0] = "mutated"
	assert.Equal(t, "model-a", orch.candidates[0])
}
