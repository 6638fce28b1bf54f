package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/audity/constants"
	"github.com/joseph-ayodele/audity/internal/entity"
	"github.com/joseph-ayodele/audity/internal/extract"
	mock_extract "github.com/joseph-ayodele/audity/internal/extract/mocks"
	"github.com/joseph-ayodele/audity/internal/integrity"
	"github.com/joseph-ayodele/audity/internal/ledger"
	"github.com/joseph-ayodele/audity/internal/ocr"
	"github.com/joseph-ayodele/audity/internal/parse"
	"github.com/joseph-ayodele/audity/internal/testutil"
)

func pdfDoc(name string, lines []string) entity.SourceDocument {
	return entity.SourceDocument{Filename: name, Format: constants.PDF, Body: testutil.BuildPDF([][]string{lines})}
}

func digest(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

func kinds(diags []entity.Diagnostic) []constants.DiagnosticKind {
	out := make([]constants.DiagnosticKind, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Kind)
	}
	return out
}

func TestRunEndToEnd(t *testing.T) {
	a := pdfDoc("a.pdf", testutil.BillLines("A1", "Acme", "2024-01-01", "1,000.00"))
	dup := entity.SourceDocument{Filename: "a-copy.pdf", Format: constants.PDF, Body: a.Body}
	b := pdfDoc("b.pdf", testutil.BillLines("B2", "Globex", "2024-01-02", "2,500"))
	c := pdfDoc("c.pdf", testutil.BillLines("C3", "Initech", "2024-01-03", "10"))
	partial := pdfDoc("partial.pdf", []string{"Unique ID: A1", "Company Name: Acme"})
	txt := entity.SourceDocument{Filename: "notes.txt", Body: []byte("hello")}
	broken := entity.SourceDocument{Filename: "broken.pdf", Format: constants.PDF, Body: []byte("garbage")}

	csv := "Unique ID,Company Name,Amount,Date,PDF Hash\n" +
		"A1,Acme,1000,2024-01-01," + digest(a.Body) + "\n" +
		"B2,Globex,\"₹2,500.00\",2024-01-02," + digest([]byte("older revision")) + "\n"
	l, err := ledger.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)

	tmp := t.TempDir()
	p := NewProcessor(Config{TempDir: tmp, HashChunkSize: 7},
		extract.NewOCRAdapter(ocr.NewExtractor(ocr.Config{}, nil)), parse.NewParser(""), l, nil)

	res, err := p.Run(context.Background(), []entity.SourceDocument{a, dup, b, c, partial, txt, broken})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)

	require.Len(t, res.Records, 3)
	assert.Equal(t, "A1", res.Records[0].Identifier)
	assert.Equal(t, "₹1,000.00", res.Records[0].FormattedAmount)
	assert.Equal(t, "a.pdf", res.Records[0].Document)
	assert.Equal(t, "B2", res.Records[1].Identifier)
	assert.Equal(t, "C3", res.Records[2].Identifier)

	assert.Equal(t, []constants.DiagnosticKind{
		constants.DiagHashMatched,
		constants.DiagDuplicateRecord,
		constants.DiagHashMatched,
		constants.DiagHashMismatch,
		constants.DiagIdentifierNotFound,
		constants.DiagIncompleteExtraction,
		constants.DiagHashMismatch,
		constants.DiagUnsupportedDocument,
		constants.DiagUnreadableDocument,
		constants.DiagUnmatchedIdentifier,
		constants.DiagUnmatchedPairing,
	}, kinds(res.Diagnostics))

	dupDiag := res.Diagnostics[1]
	assert.Equal(t, "a-copy.pdf", dupDiag.Document)
	assert.Equal(t, "A1", dupDiag.Identifier)
	assert.Equal(t, "Acme", dupDiag.CompanyName)
	assert.Equal(t, "2024-01-01", dupDiag.Date)

	incomplete := res.Diagnostics[5]
	assert.Equal(t, "A1", incomplete.Identifier)
	assert.Contains(t, incomplete.Message, "amount")

	assert.Equal(t, []string{"C3"}, res.Reconciliation.UnmatchedIdentifiers)
	require.Len(t, res.Reconciliation.UnmatchedPairs, 1)
	assert.Equal(t, "Initech", res.Reconciliation.UnmatchedPairs[0].CompanyName)
	assert.False(t, res.GateOpen())

	require.Len(t, res.Documents, 7)
	assert.Equal(t, StatusAccepted, res.Documents[0].Status)
	assert.Equal(t, integrity.Matched, res.Documents[0].Integrity.Outcome)
	assert.Equal(t, StatusDuplicate, res.Documents[1].Status)
	assert.Equal(t, StatusIncomplete, res.Documents[4].Status)
	assert.Equal(t, StatusUnsupported, res.Documents[5].Status)
	assert.Equal(t, StatusUnreadable, res.Documents[6].Status)
	assert.Equal(t, 1, res.Count(constants.DiagDuplicateRecord))
	assert.Equal(t, 3, res.CountStatus(StatusAccepted))

	left, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, left, "temp files must be released")
}

func TestRunCleanBatchWithoutHashColumn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l, err := ledger.ReadCSV(strings.NewReader("Unique ID,Company Name,Amount,Date\nX01,Acme,1000,2024-01-01\n"))
	require.NoError(t, err)

	text := mock_extract.NewMockTextExtractor(ctrl)
	gomock.InOrder(
		text.EXPECT().Extract(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, path string) (extract.TextExtractionResult, error) {
				assert.True(t, strings.HasSuffix(path, ".jpg"))
				_, statErr := os.Stat(path)
				assert.NoError(t, statErr)
				return extract.TextExtractionResult{
					Text:   strings.Join(testutil.BillLines("X01", "Acme", "2024-01-01", "1,000"), "\n"),
					Method: "image-ocr",
				}, nil
			}),
		text.EXPECT().Extract(gomock.Any(), gomock.Any()).
			Return(extract.TextExtractionResult{}, errors.New("tesseract: exit status 1")),
	)

	p := NewProcessor(Config{TempDir: t.TempDir()}, text, parse.NewParser(""), l, nil)
	res, err := p.Run(context.Background(), []entity.SourceDocument{
		{Filename: "scan.jpg", Format: constants.IMAGE, Body: []byte("img")},
		{Filename: "blurry.png", Format: constants.IMAGE, Body: []byte("img")},
	})
	require.NoError(t, err)

	assert.Equal(t, []constants.DiagnosticKind{constants.DiagExtractionFailed}, kinds(res.Diagnostics))
	require.Len(t, res.Records, 1)
	assert.Nil(t, res.Documents[0].Integrity)
	assert.Equal(t, StatusFailed, res.Documents[1].Status)
	assert.True(t, res.Reconciliation.IdentifiersClean)
	assert.True(t, res.Reconciliation.PairingsClean)
	assert.True(t, res.GateOpen())
}

func TestRunFieldParserFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l, err := ledger.ReadCSV(strings.NewReader("Unique ID,Company Name,Amount,Date\n"))
	require.NoError(t, err)

	text := mock_extract.NewMockTextExtractor(ctrl)
	text.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(extract.TextExtractionResult{Text: "x"}, nil)
	fields := mock_extract.NewMockFieldExtractor(ctrl)
	fields.EXPECT().Parse("x").Return(entity.ExtractedRecord{}, errors.New("boom"))

	res, err := NewProcessor(Config{TempDir: t.TempDir()}, text, fields, l, nil).
		Run(context.Background(), []entity.SourceDocument{{Filename: "a.pdf", Format: constants.PDF}})
	require.NoError(t, err)
	assert.Equal(t, []constants.DiagnosticKind{constants.DiagExtractionFailed, constants.DiagEmptyBatch}, kinds(res.Diagnostics))
}

func TestRunEmptyBatch(t *testing.T) {
	l, err := ledger.ReadCSV(strings.NewReader("Unique ID,Company Name,Amount,Date\nA,Acme,1,2024-01-01\n"))
	require.NoError(t, err)

	p := NewProcessor(Config{}, extract.NewOCRAdapter(ocr.NewExtractor(ocr.Config{}, nil)), parse.NewParser(""), l, nil)
	res, err := p.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Empty(t, res.Records)
	assert.Equal(t, []constants.DiagnosticKind{constants.DiagEmptyBatch}, kinds(res.Diagnostics))
	assert.True(t, res.GateOpen())
}

func TestRunRequiresCollaborators(t *testing.T) {
	_, err := NewProcessor(Config{}, nil, nil, nil, nil).Run(context.Background(), nil)
	assert.Error(t, err)
}
