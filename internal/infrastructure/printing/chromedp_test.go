package printing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, defaultChromeTimeout, r.config.DefaultTimeout)
	assert.NotNil(t, r.logger)
	assert.NotNil(t, r.allocCtx)
}

func TestBuildPrintParams_A4Portrait(t *testing.T) {
	params := buildPrintParams(&RenderRequest{HTML: "<p>x</p>", Margins: DefaultMargins()})

	assert.InDelta(t, mmToInches(210), params.paperWidth, 0.01)
	assert.InDelta(t, mmToInches(297), params.paperHeight, 0.01)
	assert.InDelta(t, mmToInches(15), params.marginTop, 0.001)
	assert.False(t, params.landscape)
	assert.False(t, params.displayFooter)
}

func TestBuildPrintParams_Landscape(t *testing.T) {
	params := buildPrintParams(&RenderRequest{HTML: "<p>x</p>", Landscape: true})
	assert.True(t, params.landscape)
	assert.Zero(t, params.marginLeft)
}

func TestBuildPrintParams_FooterRaisesBottomMargin(t *testing.T) {
	params := buildPrintParams(&RenderRequest{
		HTML:       "<p>x</p>",
		Margins:    Margins{Top: 5, Right: 5, Bottom: 5, Left: 5},
		FooterHTML: "<span class=\"pageNumber\"></span>",
	})
	assert.True(t, params.displayFooter)
	assert.InDelta(t, mmToInches(10), params.marginBottom, 0.001)
	assert.InDelta(t, mmToInches(5), params.marginTop, 0.001)

	params = buildPrintParams(&RenderRequest{HTML: "<p>x</p>", Margins: DefaultMargins(), FooterHTML: "f"})
	assert.InDelta(t, mmToInches(15), params.marginBottom, 0.001)
}

func TestBuildCompleteHTML(t *testing.T) {
	doc := buildCompleteHTML(&RenderRequest{HTML: "<p>hi</p>", Title: "Payslip <2026-03>"})
	assert.Contains(t, doc, "<!DOCTYPE html>")
	assert.Contains(t, doc, "<title>Payslip &lt;2026-03&gt;</title>")
	assert.Contains(t, doc, "<body><p>hi</p></body>")

	full := "<!DOCTYPE html><html><body>done</body></html>"
	assert.Equal(t, full, buildCompleteHTML(&RenderRequest{HTML: full, Title: "ignored"}))
}

func TestMMToInches(t *testing.T) {
	assert.InDelta(t, 1.0, mmToInches(25.4), 0.0001)
	assert.InDelta(t, 8.2677, mmToInches(210), 0.001)
}

func TestEstimatePageCount(t *testing.T) {
	assert.Equal(t, 1, estimatePageCount([]byte("%PDF-1.4")))
	pdf := []byte("<< /Type /Pages /Count 2 >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, estimatePageCount(pdf))
}

func TestChromedpRenderer_RejectsEmptyHTML(t *testing.T) {
	r, err := NewChromedpRenderer(&ChromedpConfig{DefaultTimeout: time.Second})
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Render(context.Background(), &RenderRequest{HTML: "   "})
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)

	_, err = r.Render(context.Background(), nil)
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)
}
