package terminal

import (
	"github.com/noah-isme/kasir-pos/internal/money"
	"github.com/noah-isme/kasir-pos/internal/register"
	"github.com/noah-isme/kasir-pos/internal/settlement"
)

// LineView is the wire shape of one cart line, committed values alongside
// the input mirrors and their field errors.
type LineView struct {
	ProductID          int64        `json:"productId"`
	Name               string       `json:"name"`
	AllowDecimalQty    bool         `json:"allowDecimalQty"`
	Quantity           float64      `json:"quantity"`
	QuantityInput      string       `json:"quantityInput"`
	QuantityError      string       `json:"quantityError,omitempty"`
	BaseUnitPrice      money.Money  `json:"baseUnitPrice"`
	EditedUnitPrice    *money.Money `json:"editedUnitPrice"`
	EffectiveUnitPrice money.Money  `json:"effectiveUnitPrice"`
	PriceInput         string       `json:"priceInput"`
	PriceError         string       `json:"priceError,omitempty"`
	LineSubtotal       money.Money  `json:"lineSubtotal"`
}

// SettlementView is the wire shape of the settlement flow.
type SettlementView struct {
	Open         bool        `json:"open"`
	Saving       bool        `json:"saving"`
	CashText     string      `json:"cashText"`
	CashTendered money.Money `json:"cashTendered"`
	ChangeDue    money.Money `json:"changeDue"`
	CanConfirm   bool        `json:"canConfirm"`
	Note         string      `json:"note"`
}

// StateView is the full terminal snapshot returned by every endpoint.
type StateView struct {
	TerminalID  string          `json:"terminalId"`
	CashierName string          `json:"cashierName"`
	Lines       []LineView      `json:"lines"`
	Totals      register.Totals `json:"totals"`
	ReadyToPay  bool            `json:"readyToPay"`
	Settlement  SettlementView  `json:"settlement"`
}

// snapshot must run under the terminal lock.
func snapshot(t *Terminal, cart *register.Cart, session *settlement.Session) StateView {
	lines := cart.Lines()
	views := make([]LineView, 0, len(lines))
	for _, l := range lines {
		views = append(views, LineView{
			ProductID:          l.ProductID,
			Name:               l.Name,
			AllowDecimalQty:    l.AllowDecimalQty,
			Quantity:           l.Qty,
			QuantityInput:      l.QtyInput,
			QuantityError:      l.QtyError,
			BaseUnitPrice:      l.BaseUnitPrice,
			EditedUnitPrice:    l.EditedUnitPrice,
			EffectiveUnitPrice: l.EffectiveUnitPrice(),
			PriceInput:         l.PriceInput,
			PriceError:         l.PriceError,
			LineSubtotal:       cart.LineSubtotal(l),
		})
	}
	return StateView{
		TerminalID:  t.ID,
		CashierName: session.CashierName(),
		Lines:       views,
		Totals:      cart.Totals(),
		ReadyToPay:  cart.ReadyToPay(),
		Settlement: SettlementView{
			Open:         session.IsOpen(),
			Saving:       session.Saving(),
			CashText:     session.CashText(),
			CashTendered: session.CashTendered(),
			ChangeDue:    session.ChangeDue(),
			CanConfirm:   session.CanConfirm(),
			Note:         session.Note(),
		},
	}
}
