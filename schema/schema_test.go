package schema

import "testing"

func TestStringifyString(t *testing.T) {
	s := NewString("hello")
	if got := Stringify(s); got != "hello" {
		t.Errorf("expect hello, but got %s", got)
	}
	if got := Stringify(&s); got != "hello" {
		t.Errorf("expect hello, but got %s", got)
	}
}

func TestStringifyStruct(t *testing.T) {
	in := NewInput("what is 2+2?")
	want := `{"chat_message":"what is 2+2?"}`
	if got := Stringify(in); got != want {
		t.Errorf("expect %s, but got %s", want, got)
	}
}
