// Package manifest loads and validates Harmony project manifests: the JSON
// document describing a project's targets (spec.md §6). Unknown object
// fields are ignored for forward compatibility; unknown enum values are a
// fatal CFG error, per spec.md's "Configuration errors" category (§7).
package manifest

// SchemaID identifies the manifest document family this loader accepts.
const SchemaID = "harmony.manifest/v1"

// JSONSchemaDoc is a draft-07 JSON Schema describing the manifest shape,
// for editor and other external tooling; no harmony subcommand prints it.
// It is
// descriptive only — Load performs its own structural validation and does
// not evaluate this schema at runtime.
const JSONSchemaDoc = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "$id": "harmony.manifest/v1",
  "title": "Harmony project manifest",
  "type": "object",
  "required": ["targets"],
  "properties": {
    "targets": {
      "type": "array",
      "items": { "$ref": "#/definitions/target" }
    }
  },
  "definitions": {
    "target": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name":    { "type": "string" },
        "dir":     { "type": "string" },
        "sources": { "type": "array" },
        "include": { "type": "array", "items": { "type": "string" } },
        "define":  { "type": "array", "items": { "type": "string" } },
        "shared":  { "type": "array", "items": { "type": "string" } },
        "link":    { "type": "array", "items": { "type": "string" } },
        "import":           { "type": "array", "items": { "type": "string" } },
        "import-public":    { "type": "array", "items": { "type": "string" } },
        "import-interface": { "type": "array", "items": { "type": "string" } },
        "executable": {
          "type": "object",
          "required": ["name"],
          "properties": {
            "name": { "type": "string" },
            "type": { "type": "string", "enum": ["console", "window"] }
          }
        },
        "git": {},
        "download": {
          "type": "object",
          "required": ["url"],
          "properties": {
            "url":  { "type": "string" },
            "type": { "type": "string", "enum": ["zip"] }
          }
        },
        "cmake": {
          "type": "object",
          "properties": {
            "options": { "type": "array", "items": { "type": "string" } },
            "include": { "type": "array", "items": { "type": "string" } },
            "link":    { "type": "array", "items": { "type": "string" } },
            "shared":  { "type": "array", "items": { "type": "string" } }
          }
        }
      }
    }
  }
}`
