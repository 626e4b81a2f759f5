package corpus_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawfect-mate/backend/internal/corpus"
	"github.com/pawfect-mate/backend/internal/search"
)

const header = "id,breed_name,history,health,description,characteristics,appearance,temperament\n"

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rag_dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCorpus(t, header+
		`1,Labrador Retriever,Bred in Newfoundland,Hip dysplasia,"Friendly, outgoing",Energetic,Short coat,Gentle`+"\n"+
		`2,Basset Hound,,NaN,,,Long ears,Calm`+"\n")

	docs, err := corpus.Load(path)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "1", docs[0].ID)
	assert.Equal(t, "Labrador Retriever", docs[0].Value(corpus.FieldBreedName))
	assert.Equal(t, "Friendly, outgoing", docs[0].Value(corpus.FieldDescription))

	assert.Equal(t, "2", docs[1].ID)
	assert.Equal(t, "", docs[1].Value(corpus.FieldHistory))
	assert.Equal(t, "", docs[1].Value(corpus.FieldHealth))
	assert.Equal(t, "Long ears", docs[1].Value(corpus.FieldAppearance))

	for _, doc := range docs {
		for _, field := range corpus.DefaultTextFields {
			_, ok := doc.Get(field)
			assert.True(t, ok, "document %s lacks %s", doc.ID, field)
		}
	}
}

func TestLoadShortRowsBecomeEmpty(t *testing.T) {
	docs, err := corpus.Read(strings.NewReader(header + "7,Pug\n"))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "Pug", docs[0].Value(corpus.FieldBreedName))
	value, ok := docs[0].Get(corpus.FieldTemperament)
	assert.True(t, ok)
	assert.Equal(t, "", value)
}

func TestLoadKeepsExtraColumns(t *testing.T) {
	docs, err := corpus.Read(strings.NewReader(
		"id,breed_name,history,health,description,characteristics,appearance,temperament,group\n" +
			"1,Beagle,,,,,,,hound\n"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "hound", docs[0].Value("group"))
}

func TestLoadHandlesByteOrderMark(t *testing.T) {
	docs, err := corpus.Read(strings.NewReader("\ufeff" + header + "1,Akita,,,,,,\n"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "1", docs[0].ID)
}

func TestLoadMissingColumn(t *testing.T) {
	path := writeCorpus(t, "id,breed_name,history\n1,Beagle,Old\n")

	_, err := corpus.Load(path)
	require.Error(t, err)

	var loadErr *corpus.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, path, loadErr.Path)
	assert.True(t, errors.Is(err, corpus.ErrMissingColumn))
	assert.Contains(t, err.Error(), "health")
}

func TestLoadCustomFields(t *testing.T) {
	docs, err := corpus.Read(strings.NewReader("id,breed_name\n1,Beagle\n"),
		corpus.WithTextFields("breed_name"),
		corpus.WithKeywordFields("id"))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	idx, err := search.Build(docs, []string{"breed_name"}, []string{"id"})
	require.NoError(t, err)
	assert.Len(t, idx.Query(search.Query{Question: "beagle"}), 0, "single document: idf is zero")
}

func TestLoadUnreadablePath(t *testing.T) {
	_, err := corpus.Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)

	var loadErr *corpus.LoadError
	assert.True(t, errors.As(err, &loadErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadEmptyFile(t *testing.T) {
	_, err := corpus.Load(writeCorpus(t, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadMalformedCSV(t *testing.T) {
	_, err := corpus.Read(strings.NewReader(header + "1,\"unterminated\n"))
	require.Error(t, err)

	var loadErr *corpus.LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestLoadStripsMarkup(t *testing.T) {
	docs, err := corpus.Read(strings.NewReader(header+
		`1,<b>Shiba Inu</b>,<p>Ancient&nbsp;breed</p><script>x()</script>,,,,,Bold &amp; alert`+"\n"),
		corpus.WithMarkupStripping(true))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "Shiba Inu", docs[0].Value(corpus.FieldBreedName))
	assert.Equal(t, "Ancient breed", docs[0].Value(corpus.FieldHistory))
	assert.Equal(t, "Bold & alert", docs[0].Value(corpus.FieldTemperament))
}

func TestLoadLogsSummary(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)

	_, err := corpus.Read(strings.NewReader(header+"1,Pug\n2,Boxer\n"),
		corpus.WithLogger(logger.WithField("component", "corpus")))
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Loaded corpus", entry.Message)
	assert.Equal(t, 2, entry.Data["documents"])
}

func TestLoadIndex(t *testing.T) {
	path := writeCorpus(t, header+
		"1,Labrador Retriever,,,,,,friendly\n"+
		"2,Shiba Inu,,,,,,independent\n"+
		"3,Beagle,,,,,,curious\n")

	idx, err := corpus.LoadIndex(path)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, corpus.DefaultTextFields, idx.TextFields())

	results := idx.Query(search.Query{Question: "independent"})
	require.Len(t, results, 1)
	assert.Equal(t, "2", results[0].Document.ID)
}

func TestLoadIndexDuplicateID(t *testing.T) {
	path := writeCorpus(t, header+
		"1,Labrador Retriever,,,,,,friendly\n"+
		"1,Shiba Inu,,,,,,independent\n")

	_, err := corpus.LoadIndex(path)
	var schemaErr *search.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}
