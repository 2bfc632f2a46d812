package packdoc

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"tradie-recovery-be/pkg/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() Input {
	s := strategy.Fallback(strategy.Facts{
		ClientName:  "A Tradie",
		CaseTitle:   "Unpaid switchboard – final stage",
		IssueType:   "unpaid",
		Description: "Builder withheld the final progress payment & retention.",
		State:       "VIC",
		Amount:      12500,
	})
	return Input{
		CaseID:      "c0ffee",
		CaseNumber:  "CASE-01HZX",
		GeneratedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		Strategy:    s,
	}
}

func TestRenderPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, sampleInput()))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 2000)
}

func TestRenderPDFLongTimelineWraps(t *testing.T) {
	in := sampleInput()
	for i := 0; i < 60; i++ {
		in.Strategy.Timeline = append(in.Strategy.Timeline, strategy.TimelineItem{
			Day:    i,
			Action: strings.Repeat("follow up with the builder in writing ", 4),
		})
	}
	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, in))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderDOCX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderDOCX(&buf, sampleInput()))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	files := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		files[f.Name] = string(body)
	}

	require.Contains(t, files, "[Content_Types].xml")
	require.Contains(t, files, "word/document.xml")

	doc := files["word/document.xml"]
	assert.Contains(t, doc, "Security of payment process")
	assert.Contains(t, doc, "progress payment &amp; retention")
	assert.Contains(t, doc, "Act 2002 (Vic)")
	assert.Contains(t, doc, "CASE-01HZX")
	assert.Contains(t, doc, "Deadline")
}

func TestFileName(t *testing.T) {
	now := time.UnixMilli(1714557600123)
	assert.Equal(t, "strategy-pack-abc-1714557600123.pdf", FileName("abc", "pdf", now))
	assert.Equal(t, "strategy-pack-abc-1714557600123.docx", FileName("abc", ".docx", now))
}

func TestFormatAUD(t *testing.T) {
	assert.Equal(t, "$12,500.00", FormatAUD(12500))
	assert.Equal(t, "$999.50", FormatAUD(999.5))
	assert.Equal(t, "$1,234,567.00", FormatAUD(1234567))
	assert.Equal(t, "-$10.00", FormatAUD(-10))
}
