// Package letter renders the printable verification letter for a bank
// record: a one-page PDF carrying the branch address block and a QR code
// that encodes the record's identifying fields.
package letter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/bankverify/callsheet/internal/model"
)

// QR image edge length in pixels and error correction level. The encoded
// payload is small, so medium recovery keeps the modules coarse enough to
// scan from a printed page.
const qrImageSize = 300

// Sender is the fixed block printed at the foot of every letter.
type Sender struct {
	Name         string
	Organization string
	AddressLines []string
}

// Generator renders letters and QR artifacts.
type Generator struct {
	sender Sender
	logger *zap.Logger

	now func() time.Time
}

// NewGenerator creates a letter generator with the given sender block.
func NewGenerator(sender Sender, logger *zap.Logger) *Generator {
	return &Generator{sender: sender, logger: logger, now: time.Now}
}

// QRPayload builds the URL-encoded query string embedded in the QR image:
// the record's identifying fields plus the generation timestamp.
func (g *Generator) QRPayload(rec model.BankRecord) string {
	v := url.Values{}
	v.Set("bankId", strconv.FormatInt(rec.ID, 10))
	v.Set("bankName", rec.BankName)
	v.Set("branchName", rec.BranchName)
	v.Set("ifscCode", rec.IFSCCode)
	v.Set("ufi", rec.UFI)
	v.Set("address", rec.Address)
	v.Set("timestamp", g.now().Format(time.RFC3339))
	return v.Encode()
}

// qrPNG encodes the payload as a 300px black-on-white PNG.
func qrPNG(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, qrImageSize)
}

// Filename is the single-letter download name: {bankName}_letter.pdf with
// every whitespace character replaced by an underscore.
func Filename(rec model.BankRecord) string {
	return underscored(rec.BankName) + "_letter.pdf"
}

// BulkFilename is the per-record name used in bulk generation:
// {bankName}_{branchName}_letter.pdf.
func BulkFilename(rec model.BankRecord) string {
	return underscored(rec.BankName) + "_" + underscored(rec.BranchName) + "_letter.pdf"
}

func underscored(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, s)
}

// Generate writes one letter PDF for rec to w.
func (g *Generator) Generate(rec model.BankRecord, w io.Writer) error {
	png, err := qrPNG(g.QRPayload(rec))
	if err != nil {
		return fmt.Errorf("encode qr image: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)

	pdf.CellFormat(0, 8, g.now().Format("2 January 2006"), "", 1, "R", false, 0, "")
	pdf.Ln(8)

	pdf.CellFormat(0, 8, "To,", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "The Branch Manager,", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("%s, %s", rec.BankName, rec.BranchName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 7, rec.Address, "", "L", false)
	pdf.Ln(6)

	pdf.MultiCell(0, 7,
		"Subject: Verification of branch contact and address details.\n\n"+
			"Dear Sir or Madam,\n\n"+
			"We request you to verify the address and contact details held on record "+
			"for your branch. Please scan the code below with any QR reader and "+
			"confirm or correct the details shown.",
		"", "L", false)
	pdf.Ln(4)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("branch-qr", opts, bytes.NewReader(png))
	x := (210.0 - 60.0) / 2
	pdf.ImageOptions("branch-qr", x, pdf.GetY(), 60, 60, false, opts, 0, "")
	pdf.SetY(pdf.GetY() + 66)

	pdf.CellFormat(0, 7, "Yours faithfully,", "", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, g.sender.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, g.sender.Organization, "", 1, "L", false, 0, "")
	for _, line := range g.sender.AddressLines {
		pdf.CellFormat(0, 7, line, "", 1, "L", false, 0, "")
	}

	return pdf.Output(w)
}

// GenerateBulk writes one letter per record into dir using BulkFilename.
// A record that fails to render is logged and skipped; the count of letters
// actually written is returned.
func (g *Generator) GenerateBulk(ctx context.Context, records []model.BankRecord, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	written := 0
	for _, rec := range records {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		path := filepath.Join(dir, BulkFilename(rec))
		f, err := os.Create(path)
		if err != nil {
			g.logger.Warn("skipping letter", zap.Int64("id", rec.ID), zap.Error(err))
			continue
		}
		if err := g.Generate(rec, f); err != nil {
			f.Close()
			os.Remove(path)
			g.logger.Warn("skipping letter", zap.Int64("id", rec.ID), zap.Error(err))
			continue
		}
		if err := f.Close(); err != nil {
			g.logger.Warn("skipping letter", zap.Int64("id", rec.ID), zap.Error(err))
			continue
		}
		written++
	}

	g.logger.Info("bulk letters generated", zap.Int("written", written), zap.Int("total", len(records)))
	return written, nil
}
