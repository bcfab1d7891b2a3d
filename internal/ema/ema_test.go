package ema

import "testing"

func TestEMAFirstAddIsExact(t *testing.T) {
	e := New(0.9)
	e.Add(5)
	if got := e.Val(); got != 5 {
		t.Errorf("Val(): want 5, got %v", got)
	}
}

func TestEMABlendsSubsequentValues(t *testing.T) {
	e := New(0.5)
	e.Add(10)
	e.Add(0)
	if got := e.Val(); got != 5 {
		t.Errorf("Val(): want 5, got %v", got)
	}
}

func TestEMAZeroValueIsZero(t *testing.T) {
	var e EMA
	if got := e.Val(); got != 0 {
		t.Errorf("Val(): want 0, got %v", got)
	}
}
