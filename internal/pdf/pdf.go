// Package pdf renders a generated schedule as a printable A4 document.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/go-pdf/fpdf"

	"github.com/zulandar/drillplan/internal/images"
	"github.com/zulandar/drillplan/internal/models"
)

// Filename is the attachment name used when the PDF is downloaded.
const Filename = "training-schedule-week.pdf"

// Title is printed centered at the top of the first page.
const Title = "Training schedule"

// imageWidth is the printed width of drill images in millimetres.
const imageWidth = 80

// ImageSource fetches the picture referenced by a drill's image_url.
type ImageSource interface {
	Fetch(ctx context.Context, url string) (*images.Image, error)
}

// Render writes schedule s as a PDF to w. Images are fetched through src;
// a nil src renders text only. Images that cannot be fetched or decoded are
// skipped and logged.
func Render(ctx context.Context, w io.Writer, s *models.Schedule, src ImageSource) error {
	if s == nil {
		return fmt.Errorf("pdf: nil schedule")
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(Title, true)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, tr(Title), "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, tr(subtitle(s)), "", 1, "C", false, 0, "")

	if s.Short() {
		doc.Ln(2)
		doc.SetFont("Helvetica", "I", 10)
		doc.MultiCell(0, 6, tr(s.Notice()), "", "L", false)
	}

	fetched := make(map[string]bool)
	for _, sess := range s.Sessions {
		doc.Ln(5)
		doc.SetFont("Helvetica", "B", 14)
		doc.CellFormat(0, 10, tr(sess.Label), "", 1, "L", false, 0, "")

		for _, e := range sess.Entries {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("pdf: render: %w", err)
			}
			doc.SetFont("Helvetica", "B", 12)
			doc.CellFormat(0, 8, tr(e.Label), "", 1, "L", false, 0, "")
			doc.SetFont("Helvetica", "", 11)
			doc.MultiCell(0, 8, tr(entryText(e)), "", "L", false)

			if src != nil && e.ImageURL != "" {
				if placeImage(ctx, doc, src, e.ImageURL, fetched) {
					doc.Ln(2)
				}
			}
			doc.Ln(2)
		}
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("pdf: output: %w", err)
	}
	return nil
}

// placeImage fetches url (once per document) and flows it into the page.
// It reports whether an image was placed.
func placeImage(ctx context.Context, doc *fpdf.Fpdf, src ImageSource, url string, fetched map[string]bool) bool {
	ok, seen := fetched[url]
	if !seen {
		ok = register(ctx, doc, src, url)
		fetched[url] = ok
	}
	if !ok {
		return false
	}
	doc.ImageOptions(url, doc.GetX(), 0, imageWidth, 0, true, fpdf.ImageOptions{}, 0, "")
	return true
}

func register(ctx context.Context, doc *fpdf.Fpdf, src ImageSource, url string) bool {
	img, err := src.Fetch(ctx, url)
	if err != nil {
		log.Printf("pdf: skipping image %s: %v", url, err)
		return false
	}
	opts := fpdf.ImageOptions{ImageType: img.Type, ReadDpi: true}
	doc.RegisterImageOptionsReader(url, opts, bytes.NewReader(img.Data))
	if !doc.Ok() {
		log.Printf("pdf: skipping image %s: %v", url, doc.Error())
		doc.ClearError()
		return false
	}
	return true
}

func subtitle(s *models.Schedule) string {
	return fmt.Sprintf("%s %s, %d minutes per drill", s.Sport, s.AgeCategory, s.MinutesPerDrill)
}

func entryText(e models.Entry) string {
	return fmt.Sprintf("Instruction: %s\nEquipment: %s\nDuration: %d minutes", e.Instruction, e.Equipment, e.Minutes)
}
