package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersYAML = `
title: Users
required: [id]
properties:
  id:
    type: integer
    source: user_id
  email:
    type: string
    source: contact.email
    format: email
`

func schemaDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.yaml"), []byte(usersYAML), 0644))
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTransformCommand(t *testing.T) {
	dir := schemaDir(t)

	out, err := run(t, `{"user_id":"7","contact":{"email":"A@B.C"}}`, "transform", "users", "-s", dir, "--compact")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"email":"a@b.c"}`, out)

	_, err = run(t, `{}`, "transform", "users", "-s", dir, "--strict")
	assert.ErrorContains(t, err, `required field "id" is missing`)

	_, err = run(t, ``, "transform", "users", "-s", dir)
	assert.ErrorContains(t, err, "no input document")

	_, err = run(t, `{}`, "transform", "ghost", "-s", dir)
	assert.ErrorContains(t, err, "schema not found")
}

func TestValidateCommand(t *testing.T) {
	dir := schemaDir(t)

	out, err := run(t, `{"user_id":1}`, "validate", "users", "-s", dir, "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	out, err = run(t, `{}`, "validate", "users", "-s", dir, "--strict")
	assert.Error(t, err)
	assert.Contains(t, out, "invalid")

	// Outside strict mode a missing required field is tolerated.
	_, err = run(t, `{}`, "validate", "users", "-s", dir)
	assert.NoError(t, err)
}

func TestDescribeCommand(t *testing.T) {
	dir := schemaDir(t)

	out, err := run(t, "", "describe", "-s", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "users")

	out, err = run(t, "", "describe", "users", "-s", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "| `email` | string | `contact.email` | email |")
}

func TestExportCommand(t *testing.T) {
	dir := schemaDir(t)

	out, err := run(t, "", "export", "users", "-s", dir)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Users", doc["title"])
	assert.Equal(t, "user_id", doc["properties"].(map[string]any)["id"].(map[string]any)["source"])

	out, err = run(t, "", "export", "users", "-s", dir, "-f", "openapi")
	require.NoError(t, err)
	doc = nil
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "user_id", doc["properties"].(map[string]any)["id"].(map[string]any)["x-source"])

	_, err = run(t, "", "export", "users", "-s", dir, "-f", "xml")
	assert.ErrorContains(t, err, "unknown export format")
}

func TestPipelineCommand(t *testing.T) {
	dir := schemaDir(t)
	in := "{\"user_id\":1,\"contact\":{\"email\":\"X@Y.Z\"}}\n{\"user_id\":\"2\"}\n"

	out, err := run(t, in, "pipeline", "users", "-s", dir, "--batch-size", "1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"id":1,"email":"x@y.z"}`, lines[0])
	assert.JSONEq(t, `{"id":2,"email":null}`, lines[1])

	out, err = run(t, in, "pipeline", "users", "-s", dir, "--to", "csv:-")
	require.NoError(t, err)
	assert.Equal(t, "id,email\n1,x@y.z\n2,\n", out)

	csvPath := filepath.Join(t.TempDir(), "out.csv")
	_, err = run(t, in, "pipeline", "users", "-s", dir, "--to", "csv:"+csvPath)
	require.NoError(t, err)
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "id,email\n1,x@y.z\n2,\n", string(data))

	_, err = run(t, in, "pipeline", "users", "-s", dir, "--from", "kafka:topic")
	assert.ErrorContains(t, err, "unsupported source")
}

func TestConfigFile(t *testing.T) {
	dir := schemaDir(t)
	cfgPath := filepath.Join(t.TempDir(), "reshape.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("schemas_dir: "+dir+"\nstrict: true\n"), 0644))

	_, err := run(t, `{}`, "validate", "users", "--config", cfgPath)
	assert.Error(t, err)

	// Flags win over the file.
	_, err = run(t, `{}`, "validate", "users", "--config", cfgPath, "--strict=false")
	assert.NoError(t, err)

	_, err = run(t, `{}`, "validate", "users", "--config", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "reshape version 0.1.0\n", out)
}
