// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"food-tracker/internal/models"
	"food-tracker/internal/nutrition"
	"food-tracker/internal/tracker"
)

const defaultListLimit = 20

type LogFoodParams struct {
	NaturalQuery string `json:"natural_query" description:"What was eaten, e.g. '2 eggs and toast'"`
	MealType     string `json:"meal_type,omitempty" description:"breakfast, lunch, dinner or snack (defaults to snack)"`
	Date         string `json:"date,omitempty" description:"Date eaten (YYYY-MM-DD, defaults to today)"`
}

type ParseFoodParams struct {
	NaturalQuery string `json:"natural_query" description:"What was eaten"`
}

type AddFoodLogParams struct {
	Name        string  `json:"name" description:"Food name"`
	Description string  `json:"description,omitempty" description:"Free-form notes"`
	MealType    string  `json:"meal_type,omitempty" description:"breakfast, lunch, dinner or snack (defaults to snack)"`
	Date        string  `json:"date,omitempty" description:"Date eaten (YYYY-MM-DD, defaults to today)"`
	Calories    float64 `json:"calories,omitempty" description:"Calories (defaults to 0)"`
}

// EditFoodLogParams leaves any omitted field at its stored value.
type EditFoodLogParams struct {
	ID          string                 `json:"id" description:"Entry ID"`
	Name        *string                `json:"name,omitempty" description:"Food name"`
	Description *string                `json:"description,omitempty" description:"Free-form notes"`
	MealType    *string                `json:"meal_type,omitempty" description:"breakfast, lunch, dinner or snack"`
	Date        *string                `json:"date,omitempty" description:"Date eaten (YYYY-MM-DD)"`
	Calories    *float64               `json:"calories,omitempty" description:"Calories"`
	Nutrition   *models.NutrientTotals `json:"nutrition,omitempty" description:"Replacement nutrient detail; omitted keeps the current one"`
}

type DeleteFoodLogParams struct {
	ID string `json:"id" description:"Entry ID"`
}

type GetFoodLogsParams struct {
	StartDate string `json:"start_date,omitempty" description:"Start date (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" description:"End date (YYYY-MM-DD)"`
	MealType  string `json:"meal_type,omitempty" description:"Only this meal type"`
	Limit     int    `json:"limit,omitempty" description:"Maximum number of entries to return"`
}

type GetDashboardParams struct {
	StartDate string `json:"start_date,omitempty" description:"Start date (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" description:"End date (YYYY-MM-DD)"`
	MealType  string `json:"meal_type,omitempty" description:"Only this meal type"`
}

// extractParams converts the request arguments into target.
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return &models.ValidationError{Field: "arguments", Message: err.Error()}
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return &models.ValidationError{Field: "arguments", Message: err.Error()}
	}

	return nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &models.ValidationError{Field: "id", Message: "is required"}
	}
	return nil
}

// lookupFailure turns a failed nutrition lookup into an error result carrying
// the user-facing message. Other errors pass through.
func (s *FoodTrackerServer) lookupFailure(err error) (*protocol.CallToolResult, error) {
	var lerr *nutrition.LookupError
	if errors.As(err, &lerr) {
		return s.createErrorResult(lerr.Message), nil
	}
	return nil, err
}

// handleLogFood looks up a free-text description and logs the result.
func (s *FoodTrackerServer) handleLogFood(ctx context.Context, owner string, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	logged, err := s.service.LogNatural(ctx, tracker.NaturalInput{
		Owner:        owner,
		Query:        params.NaturalQuery,
		MealCategory: params.MealType,
		Date:         params.Date,
	})
	if err != nil {
		return s.lookupFailure(err)
	}

	return s.createJSONResponse(logged)
}

// handleParseFood previews a lookup without logging it.
func (s *FoodTrackerServer) handleParseFood(ctx context.Context, _ string, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ParseFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	draft, err := s.service.Preview(ctx, params.NaturalQuery)
	if err != nil {
		return s.lookupFailure(err)
	}

	return s.createJSONResponse(draft)
}

func (s *FoodTrackerServer) handleAddFoodLog(ctx context.Context, owner string, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AddFoodLogParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	entry, err := s.service.LogManual(ctx, tracker.ManualInput{
		Owner:        owner,
		Name:         params.Name,
		Description:  params.Description,
		MealCategory: params.MealType,
		Date:         params.Date,
		Calories:     params.Calories,
	})
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(entry)
}

func (s *FoodTrackerServer) handleEditFoodLog(ctx context.Context, _ string, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params EditFoodLogParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := requireID(params.ID); err != nil {
		return nil, err
	}

	entry, err := s.service.Edit(ctx, tracker.EditInput{
		ID:           params.ID,
		Name:         params.Name,
		Description:  params.Description,
		MealCategory: params.MealType,
		Date:         params.Date,
		Calories:     params.Calories,
		Nutrition:    params.Nutrition,
	})
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(entry)
}

func (s *FoodTrackerServer) handleDeleteFoodLog(ctx context.Context, _ string, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DeleteFoodLogParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := requireID(params.ID); err != nil {
		return nil, err
	}

	if err := s.service.Delete(ctx, params.ID); err != nil {
		return nil, err
	}

	return s.createJSONResponse(map[string]string{"deleted": params.ID})
}

// handleGetFoodLogs lists the caller's entries, newest first.
func (s *FoodTrackerServer) handleGetFoodLogs(ctx context.Context, owner string, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetFoodLogsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	if params.Limit <= 0 {
		params.Limit = defaultListLimit
	}

	entries, err := s.service.List(ctx, tracker.ListInput{
		Owner:        owner,
		StartDate:    params.StartDate,
		EndDate:      params.EndDate,
		MealCategory: params.MealType,
		Limit:        params.Limit,
	})
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(entries)
}

func (s *FoodTrackerServer) handleGetToday(ctx context.Context, owner string, _ *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	summary, err := s.service.Today(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(summary)
}

func (s *FoodTrackerServer) handleGetDashboard(ctx context.Context, owner string, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetDashboardParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	dashboard, err := s.service.Dashboard(ctx, tracker.DashboardInput{
		Owner:        owner,
		StartDate:    params.StartDate,
		EndDate:      params.EndDate,
		MealCategory: params.MealType,
	})
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(dashboard)
}

func (s *FoodTrackerServer) registerTools() {
	s.tools = map[string]toolHandler{
		"log_food":        s.handleLogFood,
		"parse_food":      s.handleParseFood,
		"add_food_log":    s.handleAddFoodLog,
		"edit_food_log":   s.handleEditFoodLog,
		"delete_food_log": s.handleDeleteFoodLog,
		"get_food_logs":   s.handleGetFoodLogs,
		"get_today":       s.handleGetToday,
		"get_dashboard":   s.handleGetDashboard,
	}

	for name := range s.tools {
		s.logger.Debug(context.Background(), "registered tool", "tool", name)
	}
}

// toolNames lists the registered tools in name order.
func (s *FoodTrackerServer) toolNames() []string {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
