package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Detect the graph of one floor plan and route every space to its nearest exit",
	Example: `  evac-planner route --panoptic plan_panoptic.png --confidence plan_conf.png --exit 769 --exit 770
  evac-planner route --panoptic p.png --confidence c.png --exit 769 --geojson routes.geojson`,
	RunE: func(cmd *cobra.Command, args []string) error {
		panPath, _ := cmd.Flags().GetString("panoptic")
		confPath, _ := cmd.Flags().GetString("confidence")
		exits, _ := cmd.Flags().GetIntSlice("exit")
		geojsonPath, _ := cmd.Flags().GetString("geojson")
		jsonOut, _ := cmd.Flags().GetBool("json")

		panoptic, confidence, err := LoadSegmentation(cmd.Context(), panPath, confPath)
		if err != nil {
			return err
		}
		g, _, err := DetectGraph(panoptic, confidence, nil)
		if err != nil {
			return err
		}

		if len(exits) > 0 {
			if err := g.SetMark(exits, MarkExit); err != nil {
				return err
			}
		}
		opts := cfg.CommandOptions().Route
		res, err := RouteMarked(g, opts)
		if err != nil {
			return err
		}

		if geojsonPath != "" {
			data, err := RenderableState(g, g.NodeIDs()).ToGeoJSON().MarshalJSON()
			if err != nil {
				return err
			}
			if err := os.WriteFile(geojsonPath, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", geojsonPath, err)
			}
			log.Printf("📂 Wrote %s\n", geojsonPath)
		}

		if jsonOut {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summarizeRoute(res))
		}
		PrintRoute(cmd.OutOrStdout(), g, res, ShouldUseColor())
		return nil
	},
}

func init() {
	routeCmd.Flags().String("panoptic", "", "panoptic label PNG (R=label, G,B=instance)")
	routeCmd.Flags().String("confidence", "", "grayscale confidence PNG")
	routeCmd.Flags().IntSlice("exit", nil, "panoptic id of an exit node (repeatable)")
	routeCmd.Flags().String("geojson", "", "write nodes, edges and paths as GeoJSON to this file")
	routeCmd.Flags().Bool("json", false, "print the route summary as JSON")
	routeCmd.MarkFlagRequired("panoptic")
	routeCmd.MarkFlagRequired("confidence")
}
