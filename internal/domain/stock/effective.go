package stock

import (
	"github.com/shopspring/decimal"

	"github.com/dariomv/puntoventa-api/internal/domain/entity"
)

// EffectiveStock resuelve el stock efectivo de una tienda aplicando la regla
// por defecto del mapa disperso (servicio de dominio):
//
//   - si PerStore tiene entrada para la tienda, esa es la verdad;
//   - si no la tiene y la tienda es la principal, vale GlobalStock (el
//     agregado legado refleja la tienda principal de antes de multi-tienda);
//   - si no la tiene y la tienda no es principal, vale 0.
//
// Esta función es el ÚNICO punto donde se aplica la regla; lectores y
// escritores deben pasar por aquí para no divergir.
func EffectiveStock(rec *entity.StockRecord, storeID string, isMainStore bool) decimal.Decimal {
	if rec == nil {
		return decimal.Zero
	}
	if qty, ok := rec.PerStore[storeID]; ok {
		return qty
	}
	if isMainStore {
		return rec.GlobalStock
	}
	return decimal.Zero
}
