package http

import (
	"encoding/json"
	"net/http"
	"time"

	"pocketbook/internal/core"
	"pocketbook/internal/i18n"
	applog "pocketbook/internal/log"
)

const receiptDateLayout = "2006-01-02 15:04"

type errorResponse struct {
	Error string `json:"error"`
}

// receiptsResponse is the receipts screen: the list newest first, the
// three totals, and the same figures rendered for the active locale.
type receiptsResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	Totals       core.Totals        `json:"totals"`
	Formatted    formattedReceipts  `json:"formatted"`
}

type formattedReceipts struct {
	Locale       i18n.Locale       `json:"locale"`
	Title        string            `json:"title"`
	Labels       map[string]string `json:"labels"`
	TotalIncome  string            `json:"totalIncome"`
	TotalExpense string            `json:"totalExpense"`
	Balance      string            `json:"balance"`
	Rows         []formattedRow    `json:"rows"`
}

type formattedRow struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

func buildReceipts(txs []core.Transaction, totals core.Totals, lz *i18n.Localizer, loc *time.Location) receiptsResponse {
	if loc == nil {
		loc = time.Local
	}
	rows := make([]formattedRow, 0, len(txs))
	for _, tx := range txs {
		income := tx.Type == core.Income
		typeKey := i18n.MsgExpense
		if income {
			typeKey = i18n.MsgIncome
		}
		rows = append(rows, formattedRow{
			ID:     tx.ID,
			Name:   tx.Name,
			Type:   lz.Text(typeKey),
			Amount: lz.FormatSigned(tx.Amount, income),
			Date:   tx.Time().In(loc).Format(receiptDateLayout),
		})
	}

	return receiptsResponse{
		Transactions: txs,
		Totals:       totals,
		Formatted: formattedReceipts{
			Locale: lz.Locale(),
			Title:  lz.Text(i18n.MsgReceipts),
			Labels: map[string]string{
				"totalIncome":  lz.Text(i18n.MsgTotalIncome),
				"totalExpense": lz.Text(i18n.MsgTotalExpense),
				"balance":      lz.Text(i18n.MsgBalance),
				"backToMain":   lz.Text(i18n.MsgBackToMain),
			},
			TotalIncome:  lz.FormatAmount(totals.Income),
			TotalExpense: lz.FormatAmount(totals.Expense),
			Balance:      formatBalance(lz, totals.Balance),
			Rows:         rows,
		},
	}
}

func formatBalance(lz *i18n.Localizer, balance int64) string {
	if balance < 0 {
		return "-" + lz.FormatAmount(-balance)
	}
	return lz.FormatAmount(balance)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Failed to write response",
			applog.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}
