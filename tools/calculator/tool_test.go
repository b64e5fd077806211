package calculator

import (
	"context"
	"fmt"
	"testing"
)

func TestCalculator(t *testing.T) {
	ctx := context.Background()
	tool := New()
	ret, err := tool.Run(ctx, NewInput("(12 + 4) * 3.5 - 1.25", nil))
	if err != nil {
		t.Fatal(err)
	}
	value, ok := ret.Result.(float64)
	if !ok {
		t.Fatalf("expecting float64, but got %T", ret.Result)
	}
	if value != 54.75 {
		t.Errorf("expecting 54.75, but got %v", value)
	}
}

func TestCalculatorConstants(t *testing.T) {
	ctx := context.Background()
	tool := New()
	ret, err := tool.Run(ctx, NewInput("pi * 2", nil))
	if err != nil {
		t.Fatal(err)
	}
	value, ok := ret.Result.(float64)
	if !ok {
		t.Fatalf("expecting float64, but got %T", ret.Result)
	}
	if value < 6.28 || value > 6.29 {
		t.Errorf("expecting 2*pi, but got %v", value)
	}
}

func TestCalculatorBadExpression(t *testing.T) {
	ctx := context.Background()
	tool := New()
	if _, err := tool.Run(ctx, NewInput("2 +* 2", nil)); err == nil {
		t.Error("expecting parse error for malformed expression")
	}
}

func ExampleTool() {
	ctx := context.Background()
	tool := New()
	ret, _ := tool.Run(ctx, NewInput("2+2", nil))
	fmt.Println(ret.Result)
	// Output:
	// 4
}
