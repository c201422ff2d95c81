package summarize

import (
	"context"
	"fmt"
	"testing"

	"github.com/lyh9003/stock-report/internal/domain"
)

// stubCompletion answers by instruction and records call order.
type stubCompletion struct {
	answers map[string]string
	fail    map[string]error
	calls   []string
}

func (s *stubCompletion) Complete(_ context.Context, instruction, input string) (string, error) {
	s.calls = append(s.calls, instruction)
	if err := s.fail[instruction]; err != nil {
		return "", err
	}
	return s.answers[instruction], nil
}

func TestDeriveRunsStagesInOrder(t *testing.T) {
	t.Parallel()

	stub := &stubCompletion{answers: map[string]string{
		longInstruction:    "  long summary  ",
		oneLineInstruction: "one line",
		keywordInstruction: "chips, memory, capex",
	}}
	s := New(stub, BasisLongSummary, nil)

	got := s.Derive(context.Background(), "report body")

	if got.LongSummary != "long summary" {
		t.Fatalf("long summary %q", got.LongSummary)
	}
	if got.OneLineSummary != "one line" {
		t.Fatalf("one-line summary %q", got.OneLineSummary)
	}
	if got.Keywords != "chips, memory, capex" {
		t.Fatalf("keywords %q", got.Keywords)
	}

	want := []string{longInstruction, oneLineInstruction, keywordInstruction}
	if len(stub.calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(stub.calls))
	}
	for i, instruction := range want {
		if stub.calls[i] != instruction {
			t.Fatalf("call %d: got %q", i, stub.calls[i])
		}
	}
}

func TestDeriveSkipsDownstreamWhenLongFails(t *testing.T) {
	t.Parallel()

	stub := &stubCompletion{
		answers: map[string]string{},
		fail:    map[string]error{longInstruction: fmt.Errorf("service down")},
	}
	s := New(stub, BasisLongSummary, nil)

	got := s.Derive(context.Background(), "report body")

	if got.LongSummary != "" || got.OneLineSummary != "" || got.Keywords != "" {
		t.Fatalf("expected all-empty artifacts, got %+v", got)
	}
	if len(stub.calls) != 1 {
		t.Fatalf("downstream stages must be skipped, got calls %v", stub.calls)
	}
}

func TestDeriveDocumentBasisSurvivesLongFailure(t *testing.T) {
	t.Parallel()

	stub := &stubCompletion{
		answers: map[string]string{oneLineInstruction: "still summarized"},
		fail:    map[string]error{longInstruction: fmt.Errorf("service down")},
	}
	s := New(stub, BasisDocument, nil)

	got := s.Derive(context.Background(), "report body")

	// The one-line stage reads the document, so it still runs; keywords
	// depend on the long summary and stay skipped.
	if got.OneLineSummary != "still summarized" {
		t.Fatalf("one-line summary %q", got.OneLineSummary)
	}
	if got.LongSummary != "" || got.Keywords != "" {
		t.Fatalf("unexpected artifacts %+v", got)
	}
}

func TestDeriveDocumentBasisUsesFullText(t *testing.T) {
	t.Parallel()

	var oneLineInput string
	stub := &stubCompletion{answers: map[string]string{
		longInstruction:    "long summary",
		oneLineInstruction: "one line",
		keywordInstruction: "kw",
	}}
	s := New(&captureCompletion{stub: stub, instruction: oneLineInstruction, input: &oneLineInput}, BasisDocument, nil)

	s.Derive(context.Background(), "report body")

	if oneLineInput != "report body" {
		t.Fatalf("one-line basis %q, want document text", oneLineInput)
	}
}

func TestDeriveEmptyInputMakesNoCalls(t *testing.T) {
	t.Parallel()

	stub := &stubCompletion{}
	s := New(stub, BasisLongSummary, nil)

	got := s.Derive(context.Background(), "   ")
	if got != (domain.SummaryArtifacts{}) {
		t.Fatalf("expected zero artifacts, got %+v", got)
	}
	if len(stub.calls) != 0 {
		t.Fatalf("expected no calls, got %v", stub.calls)
	}
}

func TestDeriveWithoutClient(t *testing.T) {
	t.Parallel()

	s := New(nil, BasisLongSummary, nil)
	got := s.Derive(context.Background(), "report body")
	if got.LongSummary != "" || got.OneLineSummary != "" || got.Keywords != "" {
		t.Fatalf("expected empty artifacts without a client, got %+v", got)
	}
}

// captureCompletion records the input passed for one instruction.
type captureCompletion struct {
	stub        *stubCompletion
	instruction string
	input       *string
}

func (c *captureCompletion) Complete(ctx context.Context, instruction, input string) (string, error) {
	if instruction == c.instruction {
		*c.input = input
	}
	return c.stub.Complete(ctx, instruction, input)
}
