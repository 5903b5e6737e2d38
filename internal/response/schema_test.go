package response

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const legacyOnca = `{"deteccao": "Sim", "nome_cientifico": "Panthera onca", "nome_comum": "Onça-pintada", "numero_individuos": "1", "descricao_imagem": "Felino na trilha", "razao": "Rosetas no pelo"}`

func TestConforms(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want bool
	}{
		{"legacy schema", legacyOnca, true},
		{"legacy missing reason", `{"deteccao": "Sim", "nome_cientifico": "Panthera onca", "nome_comum": "Onça-pintada"}`, false},
		{"legacy lower-case detection", `{"deteccao": "sim", "nome_cientifico": "Panthera onca", "nome_comum": "Onça-pintada", "numero_individuos": "1", "descricao_imagem": "trilha", "razao": "rosetas"}`, false},
		{"legacy count not string", `{"deteccao": "Sim", "nome_cientifico": "Panthera onca", "nome_comum": "Onça-pintada", "numero_individuos": 1, "descricao_imagem": "trilha", "razao": "rosetas"}`, false},
		{"current schema", `{"detection": "yes", "scientific_name": "Panthera onca"}`, true},
		{"no name", `{"deteccao": "Nenhuma"}`, false},
		{"bad detection", `{"deteccao": "Talvez", "nome_cientifico": "Nenhum"}`, false},
		{"name not string", `{"scientific_name": 3}`, false},
		{"unparseable", "oops", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Conforms(tt.raw))
		})
	}
}

func TestSchemaErrors_ReportsLocation(t *testing.T) {
	errs := SchemaErrors(`{"deteccao": "Talvez", "nome_cientifico": "x"}`)
	assert.True(t, slices.ContainsFunc(errs, func(e string) bool {
		return strings.HasPrefix(e, "/deteccao")
	}), "errors %v should point at /deteccao", errs)
	assert.Equal(t, []string{"response is not a JSON object"}, SchemaErrors("nope"))
}
