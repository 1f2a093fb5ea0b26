package main

import (
	"github.com/spf13/cobra"

	"github.com/carbovista/backend/internal/geo"
)

var validateCmd = &cobra.Command{
	Use:   "validate-aoi",
	Short: "Check an AOI against the area and pixel density limits",
	RunE: func(cmd *cobra.Command, args []string) error {
		aoi, err := readAOI(aoiPath)
		if err != nil {
			return err
		}

		area, err := geo.Validate(aoi)
		if err != nil {
			return err
		}
		ext, err := geo.ExtentOf(aoi)
		if err != nil {
			return err
		}
		lon, lat := ext.Center()

		out := map[string]any{
			"area_km2":         area,
			"estimated_pixels": geo.EstimatePixels(area),
			"centroid":         []float64{lon, lat},
			"ok":               true,
		}
		if err := geo.CheckDensity(area); err != nil {
			out["ok"] = false
			out["error"] = err.Error()
		}
		return printJSON(cmd, out)
	},
}

func init() {
	validateCmd.Flags().StringVar(&aoiPath, "aoi", "", "AOI file")
	_ = validateCmd.MarkFlagRequired("aoi")
}
