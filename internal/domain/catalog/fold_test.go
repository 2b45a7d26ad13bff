package catalog

import (
	"reflect"
	"testing"
)

func TestFold_TurkishCasing(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dotted capital I", "İstanbul", "istanbul"},
		{"dotless capital I", "IĞDIR", "ığdır"},
		{"mixed", "Özel ANAOKULU", "özel anaokulu"},
		{"already lower", "kadıköy", "kadıköy"},
		{"whitespace trimmed", "  Ankara  ", "ankara"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fold(tt.in); got != tt.want {
				t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFold_Concurrent(t *testing.T) {
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				if got := Fold("İZMİR"); got != "izmir" {
					t.Errorf("Fold(İZMİR) = %q", got)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}

func TestFoldTokens(t *testing.T) {
	got := FoldTokens("  Montessori  EĞİTİM sistemi ")
	want := []string{"montessori", "eğitim", "sistemi"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FoldTokens = %v, want %v", got, want)
	}

	if tokens := FoldTokens("   "); len(tokens) != 0 {
		t.Errorf("expected no tokens for blank input, got %v", tokens)
	}
}
