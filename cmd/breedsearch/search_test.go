package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCorpus = "id,breed_name,history,health,description,characteristics,appearance,temperament\n" +
	"1,Labrador Retriever,,,family dog,,,friendly active\n" +
	"2,Shiba Inu,,,,,,independent\n" +
	"3,Border Collie,,,herding dog,,,active\n" +
	"42,Beagle,,,,,,curious active\n"

func writeTestCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "breeds.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCorpus), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	cmd := newSearchCmd(&rootOptions{})
	flag := cmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func TestSearchCmd_Table(t *testing.T) {
	out, err := execute(t, "search", "--corpus", writeTestCorpus(t), "family dog")
	require.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] Labrador Retriever")
}

func TestSearchCmd_JSONWithFilterAndLimit(t *testing.T) {
	path := writeTestCorpus(t)

	out, err := execute(t, "search", "--corpus", path, "--json", "-n", "1", "active")
	require.NoError(t, err)
	var views []searchResultView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "1", views[0].ID)

	out, err = execute(t, "search", "--corpus", path, "--json", "--filter", "id=42", "active")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Beagle", views[0].BreedName)
}

func TestSearchCmd_Boost(t *testing.T) {
	path := writeTestCorpus(t)

	// "dog" appears in two descriptions; boosting temperament lets the
	// single temperament match for "curious" outrank them.
	out, err := execute(t, "search", "--corpus", path, "--json",
		"--boost", "temperament=10", "--boost", "description=0.5", "dog curious")
	require.NoError(t, err)
	var views []searchResultView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.NotEmpty(t, views)
	assert.Equal(t, "42", views[0].ID)

	_, err = execute(t, "search", "--corpus", path, "--boost", "temperament=heavy", "dog")
	assert.Error(t, err)
}

func TestSearchCmd_NoResults(t *testing.T) {
	out, err := execute(t, "search", "--corpus", writeTestCorpus(t), "poodle")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_MissingCorpus(t *testing.T) {
	_, err := execute(t, "search", "--corpus", filepath.Join(t.TempDir(), "missing.csv"), "dog")
	assert.Error(t, err)
}

func TestFieldsCmd(t *testing.T) {
	out, err := execute(t, "fields", "--corpus", writeTestCorpus(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Documents: 4")
	assert.Contains(t, out, "  temperament")
	assert.Contains(t, out, "Keyword fields:\n  id")
}
