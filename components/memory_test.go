package components

import (
	"testing"

	"github.com/bububa/multi-agents/schema"
)

func TestMemoryOverflow(t *testing.T) {
	mem := NewMemory(2)
	mem.NewTurn()
	mem.NewMessage(UserRole, schema.NewString("one"))
	mem.NewMessage(AssistantRole, schema.NewString("two"))
	mem.NewMessage(UserRole, schema.NewString("three"))
	if n := mem.MessageCount(); n != 2 {
		t.Fatalf("expect 2 messages, but got %d", n)
	}
	if got := mem.History()[0].StringifiedContent(); got != "two" {
		t.Errorf("expect oldest message dropped, head is %s", got)
	}
}

func TestMemoryTurnID(t *testing.T) {
	mem := NewMemory(0)
	mem.NewTurn()
	first := mem.NewMessage(UserRole, schema.NewString("hi"))
	if first.TurnID() == "" {
		t.Error("expect non empty turn id")
	}
	if first.TurnID() != mem.TurnID() {
		t.Errorf("message turn id %s does not match memory %s", first.TurnID(), mem.TurnID())
	}
	mem.NewTurn()
	second := mem.NewMessage(UserRole, schema.NewString("again"))
	if first.TurnID() == second.TurnID() {
		t.Error("expect a fresh turn id per turn")
	}
}

func TestMemoryCopyAndReset(t *testing.T) {
	mem := NewMemory(5)
	mem.NewTurn()
	mem.NewMessage(UserRole, schema.NewString("hello"))
	dup := NewMemory(0)
	mem.Copy(dup)
	if dup.MessageCount() != 1 || dup.MaxMessages() != 5 {
		t.Errorf("copy mismatch: count=%d max=%d", dup.MessageCount(), dup.MaxMessages())
	}
	mem.Reset()
	if mem.MessageCount() != 0 {
		t.Error("expect empty history after reset")
	}
	if dup.MessageCount() != 1 {
		t.Error("copy should not share history with source")
	}
}
