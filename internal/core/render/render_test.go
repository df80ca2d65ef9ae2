package render

import (
	"reflect"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name         string
		in           Input
		wantText     string
		wantNoValue  []string
		wantUnmapped []string
	}{
		{
			name: "no value uses sentinel",
			in: Input{
				TemplateText: "Muro con vidrio {vidrio_ph}.",
				Mappings:     []Mapping{{Placeholder: "vidrio_ph", VariableID: "VAR-001", Position: 1}},
			},
			wantText:    "Muro con vidrio [SIN VALOR].",
			wantNoValue: []string{"vidrio_ph"},
		},
		{
			name: "value substituted",
			in: Input{
				TemplateText: "Muro con vidrio {vidrio_ph}.",
				Mappings:     []Mapping{{Placeholder: "vidrio_ph", VariableID: "VAR-001", Position: 1}},
				Values:       map[string]string{"VAR-001": "Doble Bajo Emisivo"},
			},
			wantText: "Muro con vidrio Doble Bajo Emisivo.",
		},
		{
			name: "empty value uses sentinel",
			in: Input{
				TemplateText: "{a}",
				Mappings:     []Mapping{{Placeholder: "a", VariableID: "V1", Position: 1}},
				Values:       map[string]string{"V1": ""},
			},
			wantText:    NoValue,
			wantNoValue: []string{"a"},
		},
		{
			name: "repeated token and unmapped token",
			in: Input{
				TemplateText: "{a} y {a} con {b}",
				Mappings:     []Mapping{{Placeholder: "a", VariableID: "V1", Position: 1}},
				Values:       map[string]string{"V1": "x"},
			},
			wantText:     "x y x con {b}",
			wantUnmapped: []string{"b"},
		},
		{
			name: "value containing a token is not re-substituted",
			in: Input{
				TemplateText: "{a}-{b}",
				Mappings: []Mapping{
					{Placeholder: "b", VariableID: "V2", Position: 2},
					{Placeholder: "a", VariableID: "V1", Position: 1},
				},
				Values: map[string]string{"V1": "{b}", "V2": "2"},
			},
			wantText: "{b}-2",
		},
		{
			name: "regex metacharacters are literal",
			in: Input{
				TemplateText: "Precio {p} $1.*",
				Mappings:     []Mapping{{Placeholder: "p", VariableID: "V1", Position: 1}},
				Values:       map[string]string{"V1": "$2 (.+)"},
			},
			wantText: "Precio $2 (.+) $1.*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.in)
			if got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
			if !reflect.DeepEqual(got.NoValue, tt.wantNoValue) {
				t.Errorf("NoValue = %v, want %v", got.NoValue, tt.wantNoValue)
			}
			if !reflect.DeepEqual(got.Unmapped, tt.wantUnmapped) {
				t.Errorf("Unmapped = %v, want %v", got.Unmapped, tt.wantUnmapped)
			}
		})
	}
}

func TestRender_Idempotent(t *testing.T) {
	in := Input{
		TemplateText: "Puerta {ancho} x {alto} en {material}",
		Mappings: []Mapping{
			{Placeholder: "ancho", VariableID: "V1", Position: 1},
			{Placeholder: "alto", VariableID: "V2", Position: 2},
			{Placeholder: "material", VariableID: "V3", Position: 3},
		},
		Values: map[string]string{"V1": "90", "V3": "roble"},
	}

	first := Render(in)
	second := Render(in)
	if first.Text != second.Text {
		t.Errorf("render not idempotent: %q vs %q", first.Text, second.Text)
	}
	if first.Complete() {
		t.Error("expected incomplete result")
	}
}
