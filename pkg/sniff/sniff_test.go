package sniff_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluidos-project/kubectl-fluidos/pkg/sniff"
)

const (
	countriesXML = `<?xml version="1.0"?>
<data>
    <country name="Liechtenstein">
        <rank>1</rank>
        <year>2008</year>
        <gdppc>141100</gdppc>
        <neighbor name="Austria" direction="E"/>
        <neighbor name="Switzerland" direction="W"/>
    </country>
    <country name="Singapore">
        <rank>4</rank>
        <year>2011</year>
        <gdppc>59900</gdppc>
        <neighbor name="Malaysia" direction="N"/>
    </country>
</data>
`
	familyYAML = `grandparent:
  parent:
    child:
      name: Bobby
    sibling:
      name: Molly
`
)

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()

	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)

	return b
}

func TestIsXML(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  bool
	}{
		"document with prolog":   {input: countriesXML, want: true},
		"single empty element":   {input: "<a/>", want: true},
		"comment after root":     {input: "<a></a>\n<!-- done -->\n", want: true},
		"empty":                  {input: "", want: false},
		"whitespace":             {input: " \n\t", want: false},
		"yaml mapping":           {input: familyYAML, want: false},
		"plain text":             {input: "FOOO", want: false},
		"unclosed element":       {input: "<a><b></a>", want: false},
		"two root elements":      {input: "<a/><b/>", want: false},
		"text after root":        {input: "<a/>trailing", want: false},
		"prolog without element": {input: `<?xml version="1.0"?>`, want: false},
		"latin1 encoding": {
			input: "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<policy name=\"caf\xe9\"/>",
			want:  true,
		},
		"us-ascii encoding": {
			input: `<?xml version="1.0" encoding="US-ASCII"?><policy/>`,
			want:  true,
		},
		"unknown encoding": {
			input: `<?xml version="1.0" encoding="x-made-up"?><policy/>`,
			want:  false,
		},
		"byte order mark":             {input: "\ufeff<a/>", want: true},
		"byte order mark with prolog": {input: "\ufeff<?xml version=\"1.0\"?><a/>", want: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, sniff.IsXML([]byte(tc.input)))
		})
	}
}

func TestIsXML_Nil(t *testing.T) {
	t.Parallel()

	assert.False(t, sniff.IsXML(nil))
}

func TestIsYAML(t *testing.T) {
	t.Parallel()

	assert.True(t, sniff.IsYAML([]byte(familyYAML)))
	assert.False(t, sniff.IsYAML(nil))
	assert.False(t, sniff.IsYAML([]byte("")))
	assert.False(t, sniff.IsYAML([]byte("key: [unclosed\n")))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input      []byte
		wantFormat sniff.Format
		wantErr    error
	}{
		"mspl policy": {
			input:      readTestdata(t, "policy.xml"),
			wantFormat: sniff.MSPL,
		},
		"generic xml": {
			input:      []byte(countriesXML),
			wantFormat: sniff.MSPL,
		},
		"deployment": {
			input:      readTestdata(t, "deployment.yaml"),
			wantFormat: sniff.K8S,
		},
		"deployment with intent": {
			input:      readTestdata(t, "deployment-intent.yaml"),
			wantFormat: sniff.K8S,
		},
		"nested mapping": {
			input:      []byte(familyYAML),
			wantFormat: sniff.K8S,
		},
		"nil": {
			input:   nil,
			wantErr: sniff.ErrEmptyDocument,
		},
		"empty": {
			input:   []byte(""),
			wantErr: sniff.ErrEmptyDocument,
		},
		"null document": {
			input:   []byte("null\n"),
			wantErr: sniff.ErrEmptyDocument,
		},
		"comment only": {
			input:   []byte("# nothing here\n"),
			wantErr: sniff.ErrEmptyDocument,
		},
		"multiple documents": {
			input:   []byte("a: b\n---\nc: d\n"),
			wantErr: sniff.ErrMultipleDocuments,
		},
		"invalid yaml": {
			input:   []byte("key: [unclosed\n"),
			wantErr: sniff.ErrUnknownFormat,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res, err := sniff.Classify(tc.input)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, sniff.ErrUnknownFormat)
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, sniff.Unknown, res.Format)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantFormat, res.Format)

			if tc.wantFormat == sniff.MSPL {
				assert.Nil(t, res.Document)
			} else {
				assert.NotNil(t, res.Manifest())
			}
		})
	}
}

func TestClassify_ParsedTree(t *testing.T) {
	t.Parallel()

	res, err := sniff.Classify([]byte(familyYAML))
	require.NoError(t, err)

	want := map[string]any{
		"grandparent": map[string]any{
			"parent": map[string]any{
				"child":   map[string]any{"name": "Bobby"},
				"sibling": map[string]any{"name": "Molly"},
			},
		},
	}
	assert.Equal(t, want, res.Document)

	m := res.Manifest()
	require.NotNil(t, m)
	assert.Contains(t, m, "grandparent")
}

func TestClassify_ScalarDocument(t *testing.T) {
	t.Parallel()

	res, err := sniff.Classify([]byte("FOOO"))
	require.NoError(t, err)
	assert.Equal(t, sniff.K8S, res.Format)
	assert.Equal(t, "FOOO", res.Document)
	assert.Nil(t, res.Manifest())
}

func TestFormat_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "K8S", sniff.K8S.String())
	assert.Equal(t, "MSPL", sniff.MSPL.String())
	assert.Equal(t, "Unknown", sniff.Unknown.String())
}
