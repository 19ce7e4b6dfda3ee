package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/customsgate/internal/model"
)

// MockEvaluator upper-cases titles and fails on titles containing "bad"
type MockEvaluator struct {
	delay time.Duration
}

func (m *MockEvaluator) Evaluate(ctx context.Context, item *model.LineItem) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	item.HSCode = strings.ToUpper(item.Title)
	if strings.Contains(item.Title, "bad") {
		return errors.New("evaluation failed")
	}
	return nil
}

func makeItems(titles ...string) []*model.LineItem {
	items := make([]*model.LineItem, len(titles))
	for i, title := range titles {
		items[i] = &model.LineItem{Row: i + 2, Title: title}
	}
	return items
}

func TestBatchProcessor_ProcessItems(t *testing.T) {
	processor := NewBatchProcessor(&MockEvaluator{}, 3)
	items := makeItems("shirt", "phone", "ring", "saree", "watch")

	results, err := processor.ProcessItems(context.Background(), items)
	if err != nil {
		t.Fatalf("ProcessItems failed: %v", err)
	}

	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}
	for i, r := range results {
		if r.Item != items[i] {
			t.Errorf("result %d is for row %d", i, r.Item.Row)
		}
		if r.Item.HSCode != strings.ToUpper(items[i].Title) {
			t.Errorf("item %d not evaluated: %q", i, r.Item.HSCode)
		}
	}
}

func TestBatchProcessor_ProcessItems_Error(t *testing.T) {
	processor := NewBatchProcessor(&MockEvaluator{}, 2)
	results, err := processor.ProcessItems(context.Background(), makeItems("good", "bad"))
	if err != nil {
		t.Fatalf("ProcessItems failed: %v", err)
	}

	if results[0].GetError() != nil {
		t.Errorf("expected no error for first item, got %v", results[0].GetError())
	}
	if results[1].GetError() == nil {
		t.Error("expected error for second item")
	}
}

func TestBatchProcessor_ProcessItems_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockEvaluator{}, 2)
	results, err := processor.ProcessItems(context.Background(), nil)
	if err != nil {
		t.Fatalf("ProcessItems failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessItems_Cancelled(t *testing.T) {
	processor := NewBatchProcessor(&MockEvaluator{delay: 50 * time.Millisecond}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := processor.ProcessItems(ctx, makeItems("a", "b", "c")); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestItemResult_GetError(t *testing.T) {
	r := &ItemResult{Error: errors.New("test error")}
	if r.GetError() == nil {
		t.Error("expected error")
	}

	r2 := &ItemResult{}
	if r2.GetError() != nil {
		t.Error("expected no error")
	}
}
