package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord representa el inventario de un producto en todas las tiendas
// del establecimiento.
//
// GlobalStock es el agregado legado, anterior al soporte multi-tienda: para
// establecimientos que migraron desde una sola tienda sigue significando
// "stock físico en la tienda principal".
//
// PerStore es disperso: la ausencia de una tienda NO significa cero, significa
// "sin migrar". La resolución se hace siempre con stock.EffectiveStock, nunca
// leyendo el mapa directamente en los call sites.
type StockRecord struct {
	ProductID       string
	EstablishmentID string
	GlobalStock     decimal.Decimal
	PerStore        map[string]decimal.Decimal
	UpdatedAt       time.Time
}

// Clone devuelve una copia profunda del registro (el mapa PerStore incluido).
func (r *StockRecord) Clone() *StockRecord {
	cp := *r
	cp.PerStore = make(map[string]decimal.Decimal, len(r.PerStore))
	for k, v := range r.PerStore {
		cp.PerStore[k] = v
	}
	return &cp
}
