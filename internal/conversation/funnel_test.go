package conversation

import (
	"slices"
	"testing"
)

func TestGuessFunnelFacts_FullSentence(t *testing.T) {
	facts := GuessFunnelFacts("Meu fogão Brastemp de 5 bocas não acende")

	if facts.Equipamento != "fogão" {
		t.Errorf("equipamento = %q, want %q", facts.Equipamento, "fogão")
	}
	if facts.Marca != "brastemp" {
		t.Errorf("marca = %q, want %q", facts.Marca, "brastemp")
	}
	if facts.Problema != "não acende" {
		t.Errorf("problema = %q, want %q", facts.Problema, "não acende")
	}
	if facts.Bocas != 5 {
		t.Errorf("bocas = %d, want 5", facts.Bocas)
	}
	if len(facts.KeywordsFound) == 0 {
		t.Error("keywords found set must not be empty")
	}
}

func TestGuessFunnelFacts_LongestEquipmentWins(t *testing.T) {
	facts := GuessFunnelFacts("meu fogão industrial parou")
	if facts.Equipamento != "fogão industrial" {
		t.Errorf("equipamento = %q, want %q", facts.Equipamento, "fogão industrial")
	}
	if !slices.Contains(facts.KeywordsFound, "fogão") {
		t.Errorf("found set must retain the shorter match too: %v", facts.KeywordsFound)
	}
	if !slices.Contains(facts.KeywordsFound, "fogão industrial") {
		t.Errorf("found set must retain the longer match: %v", facts.KeywordsFound)
	}
}

func TestGuessFunnelFacts_BurnerCountNeedsUnitKeyword(t *testing.T) {
	if facts := GuessFunnelFacts("fogão com 5 bocas"); facts.Bocas != 5 {
		t.Errorf("bocas = %d, want 5", facts.Bocas)
	}
	if facts := GuessFunnelFacts("fogão com 6 queimadores"); facts.Bocas != 6 {
		t.Errorf("queimadores = %d, want 6", facts.Bocas)
	}
	if facts := GuessFunnelFacts("comprei há 5 anos"); facts.Bocas != 0 {
		t.Errorf("bare number must not count as burner count, got %d", facts.Bocas)
	}
}

func TestGuessFunnelFacts_AccentAndCaseInsensitive(t *testing.T) {
	facts := GuessFunnelFacts("MAQUINA DE LAVAR Electrolux NAO LIGA")
	if facts.Equipamento != "máquina de lavar" {
		t.Errorf("equipamento = %q, want %q", facts.Equipamento, "máquina de lavar")
	}
	if facts.Marca != "electrolux" {
		t.Errorf("marca = %q, want %q", facts.Marca, "electrolux")
	}
	if facts.Problema != "não liga" {
		t.Errorf("problema = %q, want %q", facts.Problema, "não liga")
	}
}

func TestGuessFunnelFacts_NeverFails(t *testing.T) {
	for _, in := range []string{"", "   ", "bom dia", "????"} {
		facts := GuessFunnelFacts(in)
		if facts.Equipamento != "" || facts.Marca != "" || facts.Problema != "" || facts.Bocas != 0 {
			t.Errorf("GuessFunnelFacts(%q) = %+v, want all-unset", in, facts)
		}
	}
}

func TestGuessFunnelFacts_ShortBrandNotInsideWord(t *testing.T) {
	facts := GuessFunnelFacts("minha geladeira pinga água")
	if facts.Marca == "ge" {
		t.Error(`brand "ge" must not match inside "geladeira"`)
	}
	if facts.Equipamento != "geladeira" {
		t.Errorf("equipamento = %q, want %q", facts.Equipamento, "geladeira")
	}
}
