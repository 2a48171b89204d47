package tools

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roadsketch/roadsketch/pkg/render"
	"github.com/roadsketch/roadsketch/pkg/roads"
)

// ExtractCityRoadsInput defines the input parameters for road extraction
type ExtractCityRoadsInput struct {
	City string `json:"city"`
}

// ExtractCityRoadsTool returns a tool definition for extracting a city's road network
func ExtractCityRoadsTool() mcp.Tool {
	return mcp.NewTool("extract_city_roads",
		mcp.WithDescription("Extract the renderable road network of a named city from OpenStreetMap. Returns road polylines grouped by highway class with tight geographic bounds."),
		mcp.WithString("city",
			mcp.Required(),
			mcp.Description("The city name to look up, e.g. 'Paris' or 'Portland, Oregon'"),
		),
	)
}

// HandleExtractCityRoads implements road network extraction
func (r *Registry) HandleExtractCityRoads(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return WithParsedInput("extract_city_roads",
		func(ctx context.Context, input ExtractCityRoadsInput, logger *slog.Logger) (interface{}, error) {
			result, err := r.pipeline.Extract(ctx, input.City)
			if err != nil {
				logger.Error("extraction failed", "city", input.City, "error", err)
				return nil, errors.New(roads.UserMessage(err))
			}
			return result, nil
		})(ctx, req)
}

// RenderCityMapInput defines the input parameters for map rendering
type RenderCityMapInput struct {
	City string `json:"city"`
}

// RenderCityMapTool returns a tool definition for rendering a city road map as SVG
func RenderCityMapTool() mcp.Tool {
	return mcp.NewTool("render_city_map",
		mcp.WithDescription("Render a named city's road network as a standalone SVG map with white roads on a dark background. Major roads are drawn on top."),
		mcp.WithString("city",
			mcp.Required(),
			mcp.Description("The city name to render, e.g. 'Paris' or 'Portland, Oregon'"),
		),
	)
}

// HandleRenderCityMap implements SVG map rendering
func (r *Registry) HandleRenderCityMap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "render_city_map")

	input, errResult, err := InputParser[RenderCityMapInput](req)
	if err != nil {
		logger.Error("failed to parse input", "error", err)
		return errResult, nil
	}

	result, err := r.pipeline.Extract(ctx, input.City)
	if err != nil {
		logger.Error("extraction failed", "city", input.City, "error", err)
		return ErrorResponse(roads.UserMessage(err)), nil
	}

	paths := render.Project(result.Roads, result.Bounds)
	render.SortLayers(paths)
	doc := render.SVG(result.City, paths)

	logger.Info("rendered city map", "city", result.City, "roads", len(result.Roads))
	return mcp.NewToolResultText(doc), nil
}
