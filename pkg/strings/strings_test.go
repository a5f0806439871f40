package strings

import "testing"

func TestBuilder(t *testing.T) {
	builder := NewBuilder(32)

	builder.WriteString("hello")
	builder.WriteByte(' ')
	builder.WriteString("world")

	result := builder.String()
	if result != "hello world" {
		t.Errorf("expected 'hello world', got '%s'", result)
	}

	if builder.Len() != 11 {
		t.Errorf("expected length 11, got %d", builder.Len())
	}
}

func TestBuilderReset(t *testing.T) {
	builder := NewBuilder(32)
	builder.WriteString("test")

	if builder.Len() != 4 {
		t.Errorf("expected length 4, got %d", builder.Len())
	}

	builder.Reset()
	if builder.Len() != 0 {
		t.Errorf("expected length 0 after reset, got %d", builder.Len())
	}
}

func TestPooledBuilders(t *testing.T) {
	builder := GetBuilder(Small)
	builder.WriteString("pooled")
	if builder.String() != "pooled" {
		t.Errorf("expected 'pooled', got '%s'", builder.String())
	}
	PutBuilder(builder, Small)

	again := GetBuilder(Small)
	if again.Len() != 0 {
		t.Errorf("expected reset builder from pool, got length %d", again.Len())
	}
	PutBuilder(again, Small)
}

func TestSprintf(t *testing.T) {
	if got := Sprintf("plain"); got != "plain" {
		t.Errorf("expected 'plain', got '%s'", got)
	}
	if got := Sprintf("%s=%d", "answer", 42); got != "answer=42" {
		t.Errorf("expected 'answer=42', got '%s'", got)
	}
}

func TestJoin(t *testing.T) {
	if got := Join(nil, ","); got != "" {
		t.Errorf("expected empty string, got '%s'", got)
	}
	if got := Join([]string{"one"}, ","); got != "one" {
		t.Errorf("expected 'one', got '%s'", got)
	}
	if got := Join([]string{"a", "b", "c"}, ", "); got != "a, b, c" {
		t.Errorf("expected 'a, b, c', got '%s'", got)
	}
}
