package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSwaggerInfoMetadata verifies the API metadata
func TestSwaggerInfoMetadata(t *testing.T) {
	t.Run("title is set correctly", func(t *testing.T) {
		assert.Equal(t, "RW Market API", SwaggerInfo.Title)
	})

	t.Run("version is set correctly", func(t *testing.T) {
		assert.Equal(t, "1.0", SwaggerInfo.Version)
	})

	t.Run("basePath is set correctly", func(t *testing.T) {
		assert.Equal(t, "/", SwaggerInfo.BasePath)
	})

	t.Run("instance name is swagger", func(t *testing.T) {
		assert.Equal(t, "swagger", SwaggerInfo.InfoInstanceName)
	})
}

func readDoc(t *testing.T) map[string]any {
	t.Helper()
	doc := SwaggerInfo.ReadDoc()
	require.NotEmpty(t, doc)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed), "ReadDoc should return valid JSON")
	return parsed
}

// TestSwaggerInfoReadDoc verifies that ReadDoc renders valid JSON
func TestSwaggerInfoReadDoc(t *testing.T) {
	parsed := readDoc(t)

	info, ok := parsed["info"].(map[string]any)
	require.True(t, ok, "JSON should have info section")
	assert.Equal(t, "RW Market API", info["title"])
	assert.Equal(t, "1.0", info["version"])

	assert.Equal(t, "/", parsed["basePath"])
	assert.Equal(t, "2.0", parsed["swagger"])
}

// TestSwaggerInfoHasEndpoints verifies every public route is documented
func TestSwaggerInfoHasEndpoints(t *testing.T) {
	paths, ok := readDoc(t)["paths"].(map[string]any)
	require.True(t, ok, "JSON should have paths section")

	for _, path := range []string{
		"/health",
		"/api/market",
		"/api/market/export",
		"/api/wars/{rankId}/cache",
		"/api/wars/{rankId}/cache/export",
		"/api/wars/{rankId}/cache/{side}/items/{itemId}/select",
		"/api/preferences/{owner}",
		"/api/exports",
		"/api/exports/{key}",
	} {
		_, exists := paths[path]
		assert.True(t, exists, "Path %s should exist in swagger spec", path)
	}
}

// TestSwaggerDefinitionsResolve verifies every $ref points at a definition
func TestSwaggerDefinitionsResolve(t *testing.T) {
	parsed := readDoc(t)
	definitions, ok := parsed["definitions"].(map[string]any)
	require.True(t, ok, "JSON should have definitions section")

	var walk func(v any)
	walk = func(v any) {
		switch n := v.(type) {
		case map[string]any:
			if ref, ok := n["$ref"].(string); ok {
				name := ref[len("#/definitions/"):]
				_, exists := definitions[name]
				assert.True(t, exists, "unresolved reference %s", ref)
			}
			for _, child := range n {
				walk(child)
			}
		case []any:
			for _, child := range n {
				walk(child)
			}
		}
	}
	walk(parsed)
}
