package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/carbovista/backend/internal/domain"
)

// Images are the client-rendered charts embedded in the PDF, each a
// base64 data URL. Any of them may be empty.
type Images struct {
	Map       string `json:"map,omitempty"`
	Histogram string `json:"histogram,omitempty"`
	Pie       string `json:"pie,omitempty"`
}

// PDFRequest is the body of /download-pdf.
type PDFRequest struct {
	Stats  domain.StatsSummary `json:"stats"`
	Images Images              `json:"images"`
}

// figure is one embedded chart section.
type figure struct {
	name    string
	title   string
	dataURL string
	widthMM float64
	caption string
}

const marginMM = 12.7

// WritePDF renders an A4 assessment report to w. A malformed data URL is a
// ValidationError; nothing is written in that case.
func WritePDF(w io.Writer, req PDFRequest, generated time.Time) error {
	figures := []figure{
		{
			name:    "map",
			title:   "Spatial Carbon Distribution (GIS)",
			dataURL: req.Images.Map,
			widthMM: 155,
			caption: "Figure 1. Spatial distribution of predicted above-ground tree carbon within the " +
				"selected area of interest (AOI). Each point represents a Sentinel-2 pixel coloured " +
				"by predicted carbon magnitude.",
		},
		{
			name:    "histogram",
			title:   "Tree Carbon Distribution",
			dataURL: req.Images.Histogram,
			widthMM: 127,
			caption: "Figure 2. Histogram showing the frequency distribution of predicted tree carbon " +
				"values across all analysed pixels within the AOI.",
		},
		{
			name:    "pie",
			title:   "Carbon Class Breakdown",
			dataURL: req.Images.Pie,
			widthMM: 92,
			caption: "Figure 3. Proportional breakdown of low, medium, and high tree carbon classes " +
				"derived from pixel-level predictions.",
		},
	}

	// decode everything up front so a bad image fails before any output
	decoded := make(map[string]decodedImage, len(figures))
	for _, f := range figures {
		if f.dataURL == "" {
			continue
		}
		img, err := decodeDataURL(f.dataURL)
		if err != nil {
			return domain.NewValidationError("invalid %s image: %v", f.name, err)
		}
		decoded[f.name] = img
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, marginMM)
	pdf.SetTitle("CarboVista Spatial Tree Carbon Assessment", true)
	pdf.SetCreator("carbovista-backend", true)
	pdf.SetCreationDate(generated)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*marginMM

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(contentW, 9, tr("CARBOVISTA - Spatial Tree Carbon Assessment"), "", "C", false)
	pdf.Ln(4)

	s := req.Stats
	line := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(55, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(contentW-55, 6, tr(value), "", "L", false)
	}

	line("Location:", orDefault(s.AOIAddress, "Unknown location"))
	line("AOI Area:", fmt.Sprintf("%.4f km²", s.AOIAreaKm2))
	line("Analysis Period:", fmt.Sprintf("%s to %s", s.StartDate, s.EndDate))
	pdf.Ln(5)

	line("Mean Tree Carbon:", fmt.Sprintf("%.2f kg C", s.MeanACD))
	line("Total Carbon (AOI):", fmt.Sprintf("%.2f kg C (%.3f t C)", s.TotalCarbon, s.TotalCarbonT))
	line("Carbon Density:", fmt.Sprintf("%.2f kg C/ha", s.CarbonDensity))
	line("CO2 Equivalent:", fmt.Sprintf("%.3f t CO2e", s.CO2eTonnes))
	line("Reference Value:", fmt.Sprintf("RM %.2f", s.CarbonValueRM))
	line("Analysed Pixels:", fmt.Sprintf("%d", s.NPixels))
	line("Prediction Confidence:", fmt.Sprintf("%.2f", s.ConfidenceScore))
	pdf.Ln(7)

	for _, f := range figures {
		img, ok := decoded[f.name]
		if !ok {
			continue
		}
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(contentW, 8, tr(f.title), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		opts := fpdf.ImageOptions{ImageType: img.imageType}
		pdf.RegisterImageOptionsReader(f.name, opts, bytes.NewReader(img.data))
		if pdf.Err() {
			return domain.NewValidationError("invalid %s image: %v", f.name, pdf.Error())
		}
		x := marginMM + (contentW-f.widthMM)/2
		pdf.ImageOptions(f.name, x, -1, f.widthMM, 0, true, opts, 0, "")
		pdf.Ln(2)

		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 4.5, tr(f.caption), "", "L", false)
		pdf.Ln(6)
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr("Generated "+generated.UTC().Format(time.RFC3339)), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("report: failed to render pdf: %w", err)
	}
	return nil
}

type decodedImage struct {
	imageType string
	data      []byte
}

// decodeDataURL parses "data:image/<type>;base64,<payload>". A bare base64
// payload without a header is accepted as PNG.
func decodeDataURL(s string) (decodedImage, error) {
	header, payload := "", s
	if i := strings.IndexByte(s, ','); i >= 0 {
		header, payload = s[:i], s[i+1:]
	} else if strings.HasPrefix(s, "data:") {
		return decodedImage{}, fmt.Errorf("missing payload")
	}

	imageType := "PNG"
	if header != "" {
		mime := strings.TrimPrefix(header, "data:")
		mime = strings.TrimSuffix(mime, ";base64")
		switch strings.ToLower(mime) {
		case "image/png":
			imageType = "PNG"
		case "image/jpeg", "image/jpg":
			imageType = "JPG"
		case "image/gif":
			imageType = "GIF"
		default:
			return decodedImage{}, fmt.Errorf("unsupported media type %q", mime)
		}
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return decodedImage{}, fmt.Errorf("bad base64: %w", err)
	}
	if len(data) == 0 {
		return decodedImage{}, fmt.Errorf("empty image")
	}
	return decodedImage{imageType: imageType, data: data}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
