package converters

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
)

// mockExtractor returns a fixed layout and reports half-way progress.
type mockExtractor struct {
	formats []domain.Format
	layout  *domain.Layout
	err     error
	calls   int
}

func (m *mockExtractor) Formats() []domain.Format { return m.formats }

func (m *mockExtractor) Extract(_ context.Context, _ driven.ConvertInput, progress driven.ProgressFunc) (*domain.Layout, error) {
	m.calls++
	if progress != nil {
		progress(0.5)
		progress(1)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.layout, nil
}

// mockRenderer records the layout and options it was handed.
type mockRenderer struct {
	mu     sync.Mutex
	layout *domain.Layout
	opts   domain.ConversionOptions
	err    error
}

func (m *mockRenderer) Render(_ context.Context, layout *domain.Layout, opts domain.ConversionOptions, progress driven.ProgressFunc) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layout = layout
	m.opts = opts
	if progress != nil {
		progress(1)
	}
	if m.err != nil {
		return nil, m.err
	}
	return []byte("%PDF-1.3 mock"), nil
}

func paragraphLayout(text string) *domain.Layout {
	l := &domain.Layout{}
	l.AddParagraph(text)
	return l
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry(&mockRenderer{})
	assert.Empty(t, r.Formats())

	r.Register(&mockExtractor{formats: []domain.Format{domain.FormatPPTX, domain.FormatDOCX}})

	assert.True(t, r.Has(domain.FormatDOCX))
	assert.False(t, r.Has(domain.FormatXLSX))
	assert.Equal(t, []domain.Format{domain.FormatDOCX, domain.FormatPPTX}, r.Formats())
}

func TestRegistry_Convert(t *testing.T) {
	renderer := &mockRenderer{}
	r := NewRegistry(renderer)
	r.Register(&mockExtractor{formats: []domain.Format{domain.FormatDOCX}, layout: paragraphLayout("hello")})

	var fractions []float64
	opts := domain.ConversionOptions{Password: "pw", Quality: domain.QualityHigh}
	out, err := r.Convert(context.Background(), driven.ConvertInput{
		Name:    "a.docx",
		Content: []byte("PK\x03\x04"),
		Format:  domain.FormatDOCX,
		Options: opts,
	}, func(f float64) { fractions = append(fractions, f) })
	require.NoError(t, err)

	assert.Equal(t, "%PDF-1.3 mock", string(out))
	assert.Equal(t, opts, renderer.opts)
	assert.Equal(t, "hello", renderer.layout.Blocks[0].Text)
	require.Len(t, fractions, 3)
	assert.InDelta(t, 0.35, fractions[0], 1e-9)
	assert.InDelta(t, 0.7, fractions[1], 1e-9)
	assert.InDelta(t, 1.0, fractions[2], 1e-9)
}

func TestRegistry_Convert_EmptyLayoutGetsNotice(t *testing.T) {
	renderer := &mockRenderer{}
	r := NewRegistry(renderer)
	r.Register(&mockExtractor{formats: []domain.Format{domain.FormatXLSX}, layout: &domain.Layout{}})

	_, err := r.Convert(context.Background(), driven.ConvertInput{Format: domain.FormatXLSX}, nil)
	require.NoError(t, err)
	require.Len(t, renderer.layout.Blocks, 1)
	assert.Equal(t, domain.BlockNotice, renderer.layout.Blocks[0].Kind)
}

func TestRegistry_Convert_Unsupported(t *testing.T) {
	r := NewRegistry(&mockRenderer{})
	r.Register(&mockExtractor{formats: []domain.Format{domain.FormatDOCX}})

	tests := []struct {
		name   string
		format domain.Format
	}{
		{"unregistered", domain.FormatPPT},
		{"unknown", domain.Format("rtf")},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Convert(context.Background(), driven.ConvertInput{Format: tt.format}, nil)
			assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
		})
	}
}

func TestRegistry_Convert_RoutesByContent(t *testing.T) {
	modern := &mockExtractor{formats: []domain.Format{domain.FormatDOCX}, layout: paragraphLayout("modern")}
	old := &mockExtractor{formats: []domain.Format{domain.FormatDOC}, layout: paragraphLayout("legacy")}
	r := NewRegistry(&mockRenderer{})
	r.Register(modern)
	r.Register(old)

	_, err := r.Convert(context.Background(), driven.ConvertInput{
		Format:  domain.FormatDOC,
		Content: []byte("PK\x03\x04rest"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, modern.calls)

	_, err = r.Convert(context.Background(), driven.ConvertInput{
		Format:  domain.FormatDOCX,
		Content: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, old.calls)

	_, err = r.Convert(context.Background(), driven.ConvertInput{
		Format:  domain.FormatDOC,
		Content: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, old.calls)
}

func TestRegistry_Convert_Errors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		extractor error
		renderer  error
		is        []error
	}{
		{"extract failure is wrapped", boom, nil, []error{domain.ErrConversionFailed, boom}},
		{"malformed kept", domain.ErrMalformedInput, nil, []error{domain.ErrMalformedInput, domain.ErrConversionFailed}},
		{"cancel passes through", context.Canceled, nil, []error{context.Canceled}},
		{"render failure is wrapped", nil, boom, []error{domain.ErrConversionFailed, boom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(&mockRenderer{err: tt.renderer})
			r.Register(&mockExtractor{
				formats: []domain.Format{domain.FormatDOCX},
				layout:  paragraphLayout("x"),
				err:     tt.extractor,
			})

			_, err := r.Convert(context.Background(), driven.ConvertInput{Format: domain.FormatDOCX}, nil)
			require.Error(t, err)
			for _, target := range tt.is {
				assert.ErrorIs(t, err, target)
			}
		})
	}

	t.Run("cancel is not a conversion failure", func(t *testing.T) {
		r := NewRegistry(&mockRenderer{})
		r.Register(&mockExtractor{formats: []domain.Format{domain.FormatDOCX}, err: context.Canceled})
		_, err := r.Convert(context.Background(), driven.ConvertInput{Format: domain.FormatDOCX}, nil)
		assert.NotErrorIs(t, err, domain.ErrConversionFailed)
	})
}

func TestRegistry_Convert_NoRenderer(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&mockExtractor{formats: []domain.Format{domain.FormatDOCX}, layout: paragraphLayout("x")})

	_, err := r.Convert(context.Background(), driven.ConvertInput{Format: domain.FormatDOCX}, nil)
	assert.ErrorIs(t, err, domain.ErrConversionFailed)
}

func TestScaled(t *testing.T) {
	assert.Nil(t, scaled(nil, 0, 1))

	var got []float64
	p := scaled(func(f float64) { got = append(got, f) }, 0.7, 1)
	p(-1)
	p(0.5)
	p(2)
	require.Len(t, got, 3)
	assert.InDelta(t, 0.7, got[0], 1e-9)
	assert.InDelta(t, 0.85, got[1], 1e-9)
	assert.InDelta(t, 1.0, got[2], 1e-9)
}
