package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/intakehq/referral-ocr/internal/common"
	"github.com/intakehq/referral-ocr/internal/entity"
)

const sheet = "Checklist"

var header = []any{
	"Patient Last", "Patient First", "DOB", "Carrier", "Member ID",
	"Status", "Color", "Actions", "Open Items", "Notes", "Archived",
}

// WriteXLSX renders checklist records as a spreadsheet for the intake team's
// daily worklist.
func WriteXLSX(w io.Writer, records []entity.ChecklistRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return common.WrapError(err, "create worksheet")
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return common.WrapError(err, "drop default worksheet")
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return common.WrapError(err, "write header row")
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return common.WrapError(err, "compute row address")
		}
		row := []any{
			rec.Patient.LastName,
			rec.Patient.FirstName,
			rec.Patient.DOB,
			rec.Insurance.Carrier,
			rec.Insurance.MemberID,
			string(rec.Status),
			string(rec.Color),
			strings.Join(rec.Actions, "; "),
			openItems(rec.Items),
			len(rec.Notes),
			rec.Archived,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return common.WrapError(err, "write record row")
		}
	}

	if err := f.Write(w); err != nil {
		return common.WrapError(err, "write workbook")
	}
	return nil
}

func openItems(items []entity.ChecklistItem) string {
	var open []string
	for _, it := range items {
		if !it.Done {
			open = append(open, it.Label)
		}
	}
	return strings.Join(open, "; ")
}

// SuggestedFilename builds the archival name for a processed referral:
// Last_First_DOB_Date.pdf, with characters unsafe for filesystems replaced.
// Missing parts are skipped rather than padded.
func SuggestedFilename(doc entity.Document) string {
	date := doc.DocumentDate
	if date == "" {
		date = doc.IntakeDate
	}

	var parts []string
	for _, p := range []string{doc.Patient.LastName, doc.Patient.FirstName, doc.Patient.DOB, date} {
		if p = sanitize(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "referral.pdf"
	}
	return fmt.Sprintf("%s.pdf", strings.Join(parts, "_"))
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '/', r == '\\', r == ':':
			b.WriteRune('-')
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_-")
}
