package quotes

import "testing"

func TestCalculate_BaseRangePerEquipment(t *testing.T) {
	tests := []struct {
		equipamento string
		wantMin     int64
		wantMax     int64
	}{
		{"fogão", 15000, 30000},
		{"Geladeira", 25000, 45000},
		{"máquina de lavar", 20000, 38000},
		{"equipamento desconhecido", 15000, 35000},
	}
	for _, tt := range tests {
		t.Run(tt.equipamento, func(t *testing.T) {
			got := Calculate(Input{Equipamento: tt.equipamento, DescricaoProblema: "não liga"})
			if got.ValorMinimo != tt.wantMin || got.ValorMaximo != tt.wantMax {
				t.Errorf("Calculate(%q) = [%d, %d], want [%d, %d]",
					tt.equipamento, got.ValorMinimo, got.ValorMaximo, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestCalculate_ExtraBurnerSurcharge(t *testing.T) {
	got := Calculate(Input{Equipamento: "fogão", DescricaoProblema: "não acende", Bocas: 6})
	if got.ValorMinimo != 19000 || got.ValorMaximo != 34000 {
		t.Errorf("6-burner range = [%d, %d], want [19000, 34000]", got.ValorMinimo, got.ValorMaximo)
	}
}

func TestCalculate_StandardBurnersNoSurcharge(t *testing.T) {
	got := Calculate(Input{Equipamento: "fogão", DescricaoProblema: "não acende", Bocas: 4})
	if got.ValorMinimo != 15000 || got.ValorMaximo != 30000 {
		t.Errorf("4-burner range = [%d, %d], want base range", got.ValorMinimo, got.ValorMaximo)
	}
}

func TestCalculate_UrgencySurcharge(t *testing.T) {
	got := Calculate(Input{Equipamento: "fogão", DescricaoProblema: "não acende, é urgente"})
	if got.ValorMinimo != 18000 || got.ValorMaximo != 36000 {
		t.Errorf("urgent range = [%d, %d], want [18000, 36000]", got.ValorMinimo, got.ValorMaximo)
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	in := Input{Equipamento: "cooktop", DescricaoProblema: "uma boca não acende", Bocas: 5}
	first := Calculate(in)
	second := Calculate(in)
	if first != second {
		t.Errorf("Calculate is not deterministic: %+v != %+v", first, second)
	}
}
