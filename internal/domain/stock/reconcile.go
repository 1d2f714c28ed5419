package stock

import (
	"github.com/shopspring/decimal"

	"github.com/dariomv/puntoventa-api/internal/domain"
	"github.com/dariomv/puntoventa-api/internal/domain/entity"
)

// Delta es el resultado de conciliar una línea de traslado: los deltas por
// tienda a aplicar sobre el StockRecord y el delta del agregado legado.
// NewSource/NewDest son los valores efectivos resultantes (útiles para logs
// y para normalizar entradas dispersas en la primera escritura).
type Delta struct {
	PerStore  map[string]decimal.Decimal
	Global    decimal.Decimal
	NewSource decimal.Decimal
	NewDest   decimal.Decimal
}

// Reconcile calcula la mutación de stock de UNA línea de traslado contra el
// registro ACTUAL (no contra lo que se vio al armar el borrador).
//
// El agregado legado GlobalStock solo significa "stock físico en la tienda
// principal": se ajusta únicamente cuando el traslado cambia cuánto stock hay
// en la principal. Un traslado entre dos tiendas no principales lo deja
// intacto a propósito (semántica heredada, no es un total global).
func Reconcile(rec *entity.StockRecord, sourceID, destID string, sourceIsMain, destIsMain bool, quantity decimal.Decimal) (*Delta, error) {
	if sourceID == destID {
		return nil, domain.ErrInvalidInput
	}
	if !quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	sourceEff := EffectiveStock(rec, sourceID, sourceIsMain)
	destEff := EffectiveStock(rec, destID, destIsMain)
	if sourceEff.LessThan(quantity) {
		return nil, domain.ErrStockConflict
	}

	var global decimal.Decimal
	switch {
	case sourceIsMain && !destIsMain:
		global = quantity.Neg()
	case destIsMain && !sourceIsMain:
		global = quantity
	default:
		// ambas principales (no debería ocurrir) o ninguna: el agregado no cambia
		global = decimal.Zero
	}

	return &Delta{
		PerStore: map[string]decimal.Decimal{
			sourceID: quantity.Neg(),
			destID:   quantity,
		},
		Global:    global,
		NewSource: sourceEff.Sub(quantity),
		NewDest:   destEff.Add(quantity),
	}, nil
}
