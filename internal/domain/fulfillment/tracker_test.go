package fulfillment_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/fulfillment"
)

type orderStatus string

type line struct {
	ceiling  decimal.Decimal
	received decimal.Decimal
}

var tracker = fulfillment.Tracker[line, orderStatus]{
	Ceiling:     func(l *line) decimal.Decimal { return l.ceiling },
	Progress:    func(l *line) decimal.Decimal { return l.received },
	SetProgress: func(l *line, v decimal.Decimal) { l.received = v },
	Full:        "RECEIVED",
	Partial:     "PARTIALLY_RECEIVED",
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestRecord_RechazaSuperarTope(t *testing.T) {
	l := &line{ceiling: dec(10), received: dec(8)}

	err := tracker.Record(l, dec(3))
	require.ErrorIs(t, err, domain.ErrCeilingExceeded)
	assert.True(t, l.received.Equal(dec(8)), "la línea no debe cambiar al rechazar")

	require.NoError(t, tracker.Record(l, dec(2)))
	assert.True(t, l.received.Equal(dec(10)))
	assert.True(t, tracker.Remaining(l).IsZero())
}

func TestRecord_RechazaMontoNoPositivo(t *testing.T) {
	l := &line{ceiling: dec(10)}
	require.ErrorIs(t, tracker.Record(l, decimal.Zero), domain.ErrInvalidInput)
	require.ErrorIs(t, tracker.Record(l, dec(-1)), domain.ErrInvalidInput)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		lines []*line
		want  orderStatus
	}{
		{"sin avance conserva estado", []*line{{ceiling: dec(5)}, {ceiling: dec(3)}}, "APPROVED"},
		{"avance parcial", []*line{{ceiling: dec(5), received: dec(5)}, {ceiling: dec(3)}}, "PARTIALLY_RECEIVED"},
		{"una línea a medias", []*line{{ceiling: dec(5), received: dec(1)}}, "PARTIALLY_RECEIVED"},
		{"todas completas", []*line{{ceiling: dec(5), received: dec(5)}, {ceiling: dec(3), received: dec(3)}}, "RECEIVED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tracker.Resolve(tt.lines, "APPROVED"))
		})
	}
}
