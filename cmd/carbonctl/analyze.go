package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/carbovista/backend/internal/domain"
	"github.com/carbovista/backend/internal/geo"
	"github.com/carbovista/backend/internal/imagery"
	"github.com/carbovista/backend/internal/model"
	"github.com/carbovista/backend/internal/report"
	"github.com/carbovista/backend/internal/service"
)

var (
	aoiPath    string
	startDate  string
	endDate    string
	csvOut     string
	pdfOut     string
	geojsonOut string
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze",
	Short:   "Run a full AOI carbon analysis",
	Example: `  carbonctl analyze --aoi plot.geojson --start 2024-01-01 --end 2024-06-30 --csv plot.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		aoi, err := readAOI(aoiPath)
		if err != nil {
			return err
		}

		forest, err := model.Load(cfg.ModelPath)
		if err != nil {
			return err
		}

		var sampler imagery.Sampler = imagery.NewSyntheticSampler()
		if cfg.ImageryServiceURL != "" {
			sampler = imagery.NewHTTPSampler(cfg.ImageryServiceURL, cfg.ImageryTimeout, logger.Named("imagery"))
		}
		geocoder := service.NewNominatimGeocoder(cfg.GeocoderURL, cfg.GeocoderUserAgent, nil, 0, logger.Named("geocoder"))
		svc := service.NewAnalysisService(forest, sampler, geocoder, nil, logger.Named("analysis"), service.AnalysisOptions{
			PricePerTonne: cfg.CarbonPriceRM,
		})

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		res, err := svc.Run(ctx, domain.AnalysisRequest{AOI: aoi.Coordinates(), StartDate: startDate, EndDate: endDate})
		if err != nil {
			return err
		}

		now := time.Now()
		if csvOut != "" {
			if err := writeFile(csvOut, func(f *os.File) error {
				return report.WriteCSV(f, res.Stats, res.Results, now)
			}); err != nil {
				return err
			}
		}
		if pdfOut != "" {
			if err := writeFile(pdfOut, func(f *os.File) error {
				return report.WritePDF(f, report.PDFRequest{Stats: res.Stats}, now)
			}); err != nil {
				return err
			}
		}
		if geojsonOut != "" {
			if err := writeFile(geojsonOut, func(f *os.File) error {
				return json.NewEncoder(f).Encode(report.FeatureCollection(res.Results))
			}); err != nil {
				return err
			}
		}

		return printJSON(cmd, res.Stats)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&aoiPath, "aoi", "", "AOI file: GeoJSON Polygon, Feature, FeatureCollection or coordinate array")
	analyzeCmd.Flags().StringVar(&startDate, "start", "", "start date (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&endDate, "end", "", "end date (YYYY-MM-DD), exclusive")
	analyzeCmd.Flags().StringVar(&csvOut, "csv", "", "write the per-pixel CSV report here")
	analyzeCmd.Flags().StringVar(&pdfOut, "pdf", "", "write a PDF summary here")
	analyzeCmd.Flags().StringVar(&geojsonOut, "geojson", "", "write per-pixel GeoJSON here")
	_ = analyzeCmd.MarkFlagRequired("aoi")
	_ = analyzeCmd.MarkFlagRequired("start")
	_ = analyzeCmd.MarkFlagRequired("end")
}

func readAOI(path string) (domain.AOI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.AOI{}, fmt.Errorf("failed to read AOI: %w", err)
	}
	return geo.ParseGeoJSON(data)
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
