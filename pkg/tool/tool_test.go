package tool

import (
	"context"
	"errors"
	"testing"
)

func testDescriptor(name string, fn ExecFunc) Descriptor {
	return Descriptor{
		Name:        name,
		Description: "test",
		Schema: ObjectSchema(map[string]*Schema{
			"query": StringParam("the query"),
			"limit": {Type: "integer", Description: "max results"},
		}, "query"),
		Execute: fn,
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	ok := func(ctx context.Context, args map[string]any) (string, error) { return "", nil }
	_, err := NewRegistry(testDescriptor("a", ok), testDescriptor("a", ok))
	if err == nil {
		t.Fatal("expected error for duplicate tool name")
	}
}

func TestRegistryRejectsMissingExecutor(t *testing.T) {
	_, err := NewRegistry(Descriptor{Name: "a"})
	if err == nil {
		t.Fatal("expected error for nil executor")
	}
}

func TestDescribePreservesOrder(t *testing.T) {
	ok := func(ctx context.Context, args map[string]any) (string, error) { return "", nil }
	r, err := NewRegistry(testDescriptor("c", ok), testDescriptor("a", ok), testDescriptor("b", ok))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	descs := r.Describe()
	want := []string{"c", "a", "b"}
	for i, d := range descs {
		if d.Name != want[i] {
			t.Errorf("Describe[%d] = %s, want %s", i, d.Name, want[i])
		}
	}
}

func TestInvokeUnknownTool(t *testing.T) {
	r, _ := NewRegistry()
	_, err := r.Invoke(context.Background(), "nope", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("err = %v, want ErrUnknownTool", err)
	}
}

func TestInvokeValidatesRequiredFields(t *testing.T) {
	r, _ := NewRegistry(testDescriptor("search", func(ctx context.Context, args map[string]any) (string, error) {
		t.Fatal("executor must not run on invalid arguments")
		return "", nil
	}))

	_, err := r.Invoke(context.Background(), "search", map[string]any{"limit": 3})
	var invalid *InvalidArgumentsError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidArgumentsError", err)
	}
	if invalid.Tool != "search" {
		t.Errorf("Tool = %s", invalid.Tool)
	}
}

func TestInvokeValidatesTypes(t *testing.T) {
	r, _ := NewRegistry(testDescriptor("search", func(ctx context.Context, args map[string]any) (string, error) {
		return "", nil
	}))

	_, err := r.Invoke(context.Background(), "search", map[string]any{"query": 42})
	var invalid *InvalidArgumentsError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidArgumentsError", err)
	}

	// JSON numbers decode as float64; whole floats satisfy integer params.
	if _, err := r.Invoke(context.Background(), "search", map[string]any{"query": "q", "limit": float64(3)}); err != nil {
		t.Fatalf("whole float should satisfy integer: %v", err)
	}
	if _, err := r.Invoke(context.Background(), "search", map[string]any{"query": "q", "limit": 3.5}); err == nil {
		t.Fatal("fractional float should fail integer validation")
	}
}

func TestInvokeAllowsUndeclaredFields(t *testing.T) {
	r, _ := NewRegistry(testDescriptor("search", func(ctx context.Context, args map[string]any) (string, error) {
		return "ok", nil
	}))
	got, err := r.Invoke(context.Background(), "search", map[string]any{"query": "q", "extra": true})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != "ok" {
		t.Errorf("result = %q", got)
	}
}

func TestInvokeWrapsExecutorFailure(t *testing.T) {
	boom := errors.New("boom")
	r, _ := NewRegistry(testDescriptor("search", func(ctx context.Context, args map[string]any) (string, error) {
		return "", boom
	}))

	_, err := r.Invoke(context.Background(), "search", map[string]any{"query": "q"})
	var exec *ExecutionError
	if !errors.As(err, &exec) {
		t.Fatalf("err = %v, want ExecutionError", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("ExecutionError does not wrap cause: %v", err)
	}
}
