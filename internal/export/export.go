// Package export renders payment records as CSV or JSON downloads.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mmynk/duespay/internal/models"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts csv or json in any case; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// Filename returns the download name for an export taken at t.
func (f Format) Filename(t time.Time) string {
	return fmt.Sprintf("payment-history-%s.%s", t.UTC().Format("2006-01-02"), f)
}

// Header is the fixed CSV header. Row fields map to it positionally.
var Header = []string{
	"ID",
	"User Name",
	"User Email",
	"Bill Month",
	"Bill Year",
	"Payment Type",
	"Amount",
	"Status",
	"Payment Date",
	"Notes",
	"Receipt URL",
}

// Row flattens a record into the Header column order.
func Row(rec *models.PaymentRecord) []string {
	return []string{
		rec.ID,
		rec.UserName,
		rec.UserEmail,
		strconv.Itoa(rec.BillMonth),
		strconv.Itoa(rec.BillYear),
		string(rec.Type),
		strconv.FormatInt(rec.Amount, 10),
		string(rec.Status),
		time.Unix(rec.CreatedAt, 0).UTC().Format(time.RFC3339),
		rec.Notes,
		rec.ReceiptURL,
	}
}

// WriteCSV writes the header and one line per record. Every cell is double
// quoted with embedded quotes doubled and line breaks folded to spaces; lines are joined with "\n" and the
// output has no trailing newline.
func WriteCSV(w io.Writer, records []*models.PaymentRecord) error {
	if err := writeLine(w, Header); err != nil {
		return err
	}
	for _, rec := range records {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if err := writeLine(w, Row(rec)); err != nil {
			return err
		}
	}
	return nil
}

// lineBreaks folds CR/LF inside a cell to spaces so every record stays on
// one line.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

func writeLine(w io.Writer, cells []string) error {
	quoted := make([]string, len(cells))
	for i, c := range cells {
		quoted[i] = `"` + strings.ReplaceAll(lineBreaks.Replace(c), `"`, `""`) + `"`
	}
	_, err := io.WriteString(w, strings.Join(quoted, ","))
	return err
}

// Record is the JSON shape of an exported payment.
type Record struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
	ReceiptURL string `json:"receiptUrl"`
	Notes      string `json:"notes,omitempty"`
	CreatedAt  string `json:"createdAt"`
	User       struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
	Bill struct {
		ID     string `json:"id"`
		Month  int    `json:"month"`
		Year   int    `json:"year"`
		Amount int64  `json:"amount"`
	} `json:"bill"`
}

// NewRecord converts a payment record to its JSON shape.
func NewRecord(rec *models.PaymentRecord) Record {
	var r Record
	r.ID = rec.ID
	r.Type = string(rec.Type)
	r.Amount = rec.Amount
	r.Status = string(rec.Status)
	r.ReceiptURL = rec.ReceiptURL
	r.Notes = rec.Notes
	r.CreatedAt = time.Unix(rec.CreatedAt, 0).UTC().Format(time.RFC3339)
	r.User.ID = rec.UserID
	r.User.Name = rec.UserName
	r.User.Email = rec.UserEmail
	r.Bill.ID = rec.BillID
	r.Bill.Month = rec.BillMonth
	r.Bill.Year = rec.BillYear
	r.Bill.Amount = rec.BillAmount
	return r
}

// WriteJSON writes the records as an indented JSON array.
func WriteJSON(w io.Writer, records []*models.PaymentRecord) error {
	out := make([]Record, len(records))
	for i, rec := range records {
		out[i] = NewRecord(rec)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Write renders records in format f.
func Write(w io.Writer, f Format, records []*models.PaymentRecord) error {
	if f == FormatJSON {
		return WriteJSON(w, records)
	}
	return WriteCSV(w, records)
}
