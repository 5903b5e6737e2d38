package response

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// analysisSchemaJSON describes the structured answer the arena prompt asks
// for. A current-schema answer needs scientific_name; a legacy answer must
// carry every field of the arena's biological analysis.
const analysisSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "detection": {"type": "string"},
    "scientific_name": {"type": "string"},
    "common_name": {"type": "string"},
    "deteccao": {"enum": ["Sim", "Nenhuma"]},
    "nome_cientifico": {"type": "string"},
    "nome_comum": {"type": "string"},
    "numero_individuos": {"type": "string"},
    "descricao_imagem": {"type": "string"},
    "razao": {"type": "string"}
  },
  "anyOf": [
    {"required": ["scientific_name"]},
    {"required": ["deteccao", "nome_cientifico", "nome_comum", "numero_individuos", "descricao_imagem", "razao"]}
  ]
}`

var printer = message.NewPrinter(language.English)

var analysisSchema = mustCompileSchema(analysisSchemaJSON, "analysis.schema.json")

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// Conforms reports whether raw decodes to an object matching the structured
// analysis schema. A response can be parseable (see [Parse]) without
// conforming, e.g. when it only carries free-text fields.
func Conforms(raw any) bool {
	return len(SchemaErrors(raw)) == 0
}

// SchemaErrors lists the schema violations of raw, one per failing
// location. Unparseable input yields a single decode error.
func SchemaErrors(raw any) []string {
	fields, ok := Decode(raw)
	if !ok {
		return []string{"response is not a JSON object"}
	}

	err := analysisSchema.Validate(fields)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/" + strings.Join(ve.InstanceLocation, "/")
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(printer)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}
