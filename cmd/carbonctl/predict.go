package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carbovista/backend/internal/model"
	"github.com/carbovista/backend/internal/service"
)

var featuresArg string

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict carbon for one feature vector",
	Long: `Predict carbon for one feature vector given as a JSON object, inline or
as @file, e.g. --features '{"B2":0.03,"NDVI":0.71,...}'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := []byte(featuresArg)
		if len(featuresArg) > 1 && featuresArg[0] == '@' {
			data, err := os.ReadFile(featuresArg[1:])
			if err != nil {
				return fmt.Errorf("failed to read features: %w", err)
			}
			raw = data
		}

		var values map[string]any
		if err := json.Unmarshal(raw, &values); err != nil {
			return fmt.Errorf("features must be a JSON object: %w", err)
		}

		forest, err := model.Load(cfg.ModelPath)
		if err != nil {
			return err
		}

		svc := service.NewPredictionService(forest, nil, logger.Named("prediction"))
		resp, err := svc.Predict(context.Background(), values)
		if err != nil {
			return err
		}
		return printJSON(cmd, resp)
	},
}

func init() {
	predictCmd.Flags().StringVar(&featuresArg, "features", "", "feature vector as JSON or @file")
	_ = predictCmd.MarkFlagRequired("features")
}
