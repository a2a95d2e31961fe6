package textnorm

import "testing"

func TestFold_StripsDiacriticsAndCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Não Acende", "nao acende"},
		{"FOGÃO", "fogao"},
		{"fogão  a   gás", "fogao a gas"},
		{"máquina de lavar", "maquina de lavar"},
		{"elétrico", "eletrico"},
		{"", ""},
		{"  já  normalizado  ", "ja normalizado"},
	}

	for _, tc := range tests {
		if got := Fold(tc.in); got != tc.want {
			t.Errorf("Fold(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFold_Idempotent(t *testing.T) {
	inputs := []string{"Fogão Brastemp não acende", "COOKTOP por indução", "coifa"}
	for _, in := range inputs {
		once := Fold(in)
		if twice := Fold(once); twice != once {
			t.Errorf("Fold not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestContainsPhrase(t *testing.T) {
	if !ContainsPhrase("Meu fogão NÃO ACENDE mais", "nao acende") {
		t.Error("expected folded substring match")
	}
	if ContainsPhrase("fogão liga normal", "nao acende") {
		t.Error("unexpected match")
	}
}

func TestContainsPhrase_WordBoundaries(t *testing.T) {
	if ContainsPhrase("minha geladeira parou", "ge") {
		t.Error("short token must not match inside a longer word")
	}
	if !ContainsPhrase("fogão GE, 4 bocas", "ge") {
		t.Error("expected match at punctuation boundary")
	}
	if !ContainsPhrase("fogão", "fogao") {
		t.Error("expected match at string edges")
	}
}
