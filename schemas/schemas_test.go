package schemas

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	schemaFiles := []string{
		"cache_entry.schema.json",
		"rows.schema.json",
	}

	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			data, err := os.ReadFile(schemaFile)
			require.NoError(t, err, "should be able to read schema file")

			var schemaObj map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &schemaObj), "schema file should be valid JSON: %s", schemaFile)

			_, hasType := schemaObj["type"]
			_, hasSchema := schemaObj["$schema"]
			assert.True(t, hasType && hasSchema, "schema should declare $schema and type")
		})
	}
}

func TestEmbeddedSchemasMatchFiles(t *testing.T) {
	for file, embedded := range map[string]string{
		"cache_entry.schema.json": CacheEntry,
		"rows.schema.json":  Rows,
	} {
		data, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Equal(t, string(data), embedded, file)
	}
}
