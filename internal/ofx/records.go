package ofx

import (
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Veraticus/pocket-ledger/internal/model"
)

// recordNamespace seeds deterministic record IDs so re-importing a statement
// yields the same IDs and the ledger can skip them.
var recordNamespace = uuid.MustParse("6f1c1c52-1d0b-4a57-9a57-7c1f2a9e3b10")

// Target says where imported statement lines land in the ledger.
type Target struct {
	AccountID         string
	ExpenseCategoryID string
	IncomeCategoryID  string
	Currency          string // used when the statement declares none
}

// RecordID derives a stable record ID from the ledger account and the
// bank's transaction identifier.
func RecordID(accountID string, tx Transaction) string {
	return uuid.NewSHA1(recordNamespace, []byte(accountID+"|"+tx.BankAccount+"|"+tx.FITID)).String()
}

// ToRecords converts statement lines into record drafts. Debits become
// expenses and credits become income. Zero-amount lines are dropped.
func ToRecords(transactions []Transaction, target Target) []model.Record {
	records := make([]model.Record, 0, len(transactions))
	for _, tx := range transactions {
		if tx.Amount.IsZero() {
			continue
		}

		rec := model.Record{
			ID:         RecordID(target.AccountID, tx),
			Date:       tx.Date,
			Amount:     tx.Amount.Abs(),
			Currency:   tx.Currency,
			AccountID:  target.AccountID,
			Type:       model.DirectionIncome,
			CategoryID: target.IncomeCategoryID,
			Notes:      notesFor(tx),
		}
		if tx.Amount.IsNegative() {
			rec.Type = model.DirectionExpense
			rec.CategoryID = target.ExpenseCategoryID
		}
		if rec.Currency == "" {
			rec.Currency = target.Currency
		}
		records = append(records, rec)
	}
	return records
}

func notesFor(tx Transaction) string {
	notes := tx.Merchant
	if notes == "" {
		notes = tx.Name
	}
	if tx.CheckNumber != "" && notes == "" {
		notes = "Check " + tx.CheckNumber
	}
	return truncateNotes(notes)
}

// truncateNotes cuts s to at most model.MaxNotesLength bytes without
// splitting a UTF-8 sequence.
func truncateNotes(s string) string {
	if len(s) <= model.MaxNotesLength {
		return s
	}
	cut := model.MaxNotesLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
