package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openrp/fuel-stations/game/config"
	"github.com/openrp/fuel-stations/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Fuel Station Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Fuel Station Server - MCP Interface

This is a thin client that proxies all requests to the REST API server.

The server simulates fuel consumption for vehicles and refueling
transactions at fuel stations. Vehicles burn fuel while their engine is
running; players walk up to a pump, request a refuel, and accept the
offered amount to fill the tank against their cash balance.

AVAILABLE TOOLS:
- list_stations: List configured fuel stations
- list_vehicles: List vehicles with fuel state
- vehicle_state: Get one vehicle's fuel and engine state
- player_state: Get a player's position, cash, and seat
- request_refuel: Open a refuel offer at the nearest pump
- accept_offer: Accept a pending offer with a unit amount
- decline_offer: Decline a pending offer
- cancel_refuel: Cancel a pending session
- refuel_session: Inspect a player's refuel session
- set_fuel: Set a vehicle's tank level directly (admin)
- list_profiles: List available simulation profiles
- pump_instructions: Get the refueling rules and rejection reasons`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_stations",
		Description: "List all configured fuel stations with their positions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListStations)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_vehicles",
		Description: "List all vehicles with engine and fuel state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListVehicles)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "vehicle_state",
		Description: "Get one vehicle's position, engine state, and fuel level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"vehicle_id": map[string]interface{}{
					"type":        "string",
					"description": "Vehicle ID to inspect",
				},
			},
			Required: []string{"vehicle_id"},
		},
	}, c.handleVehicleState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "player_state",
		Description: "Get a player's position, cash balance, and current vehicle",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Player ID to inspect",
				},
			},
			Required: []string{"player_id"},
		},
	}, c.handlePlayerState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "request_refuel",
		Description: "Open a refuel offer for the vehicle in front of the player. The player must be on foot next to a pump with the vehicle's engine off.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Player requesting the refuel",
				},
			},
			Required: []string{"player_id"},
		},
	}, c.handleRequestRefuel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "accept_offer",
		Description: "Accept a pending refuel offer. The amount is in fuel units and is clamped to the offer's maximum; omit it to fill the maximum.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Player accepting the offer",
				},
				"amount": map[string]interface{}{
					"type":        "integer",
					"description": "Fuel units to purchase (optional, defaults to the maximum)",
				},
			},
			Required: []string{"player_id"},
		},
	}, c.handleAcceptOffer)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "decline_offer",
		Description: "Decline a pending refuel offer",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Player declining the offer",
				},
			},
			Required: []string{"player_id"},
		},
	}, c.handleDeclineOffer)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cancel_refuel",
		Description: "Cancel a pending refuel session. A fill that is already running cannot be cancelled.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Player cancelling the session",
				},
			},
			Required: []string{"player_id"},
		},
	}, c.handleCancelRefuel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "refuel_session",
		Description: "Inspect a player's current refuel session, if any",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Player whose session to inspect",
				},
			},
			Required: []string{"player_id"},
		},
	}, c.handleRefuelSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_fuel",
		Description: "Set a vehicle's tank level directly (admin). The value is clamped to the tank capacity.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"vehicle_id": map[string]interface{}{
					"type":        "string",
					"description": "Vehicle to adjust",
				},
				"fuel": map[string]interface{}{
					"type":        "number",
					"description": "New fuel level in units",
				},
			},
			Required: []string{"vehicle_id", "fuel"},
		},
	}, c.handleSetFuel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_profiles",
		Description: "List available simulation profiles",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListProfiles)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "pump_instructions",
		Description: "Get the refueling rules, pricing, and the reasons a pump rejects a request",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handlePumpInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleListStations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var stations []service.StationInfo
	if err := c.apiCall("GET", "/api/stations", nil, &stations); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Fuel Stations (%d):\n\n", len(stations))
	for _, s := range stations {
		marker := ""
		if s.Blip {
			marker = " [blip]"
		}
		result += fmt.Sprintf("- %s: %s at (%.1f, %.1f, %.1f)%s\n",
			s.UID, s.Name, s.Position.X, s.Position.Y, s.Position.Z, marker)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListVehicles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                      `json:"count"`
		Vehicles []*service.VehicleStatus `json:"vehicles"`
	}
	if err := c.apiCall("GET", "/api/vehicles", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Vehicles (%d):\n\n", response.Count)
	for _, v := range response.Vehicles {
		result += "- " + formatVehicleLine(v) + "\n"
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleVehicleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	vehicleID, _ := args["vehicle_id"].(string)

	var status service.VehicleStatus
	if err := c.apiCall("GET", "/api/vehicles/"+vehicleID, nil, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatVehicleStatus(&status)), nil
}

func (c *Client) handlePlayerState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	playerID, _ := args["player_id"].(string)

	var status service.PlayerStatus
	if err := c.apiCall("GET", "/api/players/"+playerID, nil, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	seat := "on foot"
	if status.VehicleID != "" {
		seat = "in vehicle " + status.VehicleID
	}
	result := fmt.Sprintf("Player: %s (%s)\nPosition: (%.1f, %.1f, %.1f)\nCash: $%.2f\nSeat: %s\n",
		status.ID, status.Name,
		status.Position.X, status.Position.Y, status.Position.Z,
		status.Cash, seat)

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRequestRefuel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	playerID, _ := args["player_id"].(string)

	var offer service.RefuelOffer
	err := c.apiCall("POST", "/api/refuel/request", map[string]string{"player_id": playerID}, &offer)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatOffer(&offer)), nil
}

func (c *Client) handleAcceptOffer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	playerID, _ := args["player_id"].(string)
	amount := 0
	if raw, ok := args["amount"].(float64); ok {
		amount = int(raw)
	}

	body := map[string]interface{}{"player_id": playerID, "amount": amount}
	if err := c.apiCall("POST", "/api/refuel/accept", body, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Refueling started. The pump debits the cost up front and fills over time.\n"), nil
}

func (c *Client) handleDeclineOffer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	playerID, _ := args["player_id"].(string)

	body := map[string]string{"player_id": playerID}
	if err := c.apiCall("POST", "/api/refuel/decline", body, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Offer declined.\n"), nil
}

func (c *Client) handleCancelRefuel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	playerID, _ := args["player_id"].(string)

	body := map[string]string{"player_id": playerID}
	if err := c.apiCall("POST", "/api/refuel/cancel", body, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Refuel session cancelled.\n"), nil
}

func (c *Client) handleRefuelSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	playerID, _ := args["player_id"].(string)

	var offer service.RefuelOffer
	if err := c.apiCall("GET", "/api/refuel/sessions/"+playerID, nil, &offer); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatOffer(&offer)), nil
}

func (c *Client) handleSetFuel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	vehicleID, _ := args["vehicle_id"].(string)
	fuel, _ := args["fuel"].(float64)

	var status service.VehicleStatus
	body := map[string]float64{"fuel": fuel}
	if err := c.apiCall("POST", "/api/vehicles/"+vehicleID+"/fuel", body, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatVehicleStatus(&status)), nil
}

func (c *Client) handleListProfiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var profiles []config.ProfileInfo
	if err := c.apiCall("GET", "/api/profiles", nil, &profiles); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Available Profiles (%d):\n\n", len(profiles))
	for _, p := range profiles {
		result += fmt.Sprintf("- %s: %s (%d stations)\n", p.ProfileID, p.Description, p.Stations)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handlePumpInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Fuel Station Server - Refueling Rules

CONSUMPTION:
Vehicles with a running engine burn fuel every simulation tick. When the
tank runs dry the engine shuts off and cannot be restarted until the
vehicle is refueled. Gauge updates are pushed over the WebSocket channel
as fuel_update messages.

REFUELING A VEHICLE:
1. Park the vehicle near a station pump and turn the engine off.
2. Exit the vehicle and stand in front of it at the pump.
3. Call request_refuel. The pump searches for the vehicle just ahead of
   the player and computes an offer: how many whole units fit in the
   tank, capped by what the player can afford.
4. Call accept_offer with the amount to purchase, or decline_offer.
   The full cost is debited immediately; the tank then fills over time
   while a progress bar runs.
5. A pending offer expires after a timeout. An expired offer must be
   re-requested.

WHY A REQUEST IS REJECTED:
- The player is sitting in a vehicle (refueling happens on foot)
- No vehicle is close enough in front of the player
- The vehicle's engine is running
- The vehicle is already being refueled
- The player is too far from the vehicle
- The tank is effectively full
- The player cannot afford the minimum purchase

PRICING:
Fuel is sold in whole units at a fixed unit price. The offer's
max_fillable already accounts for the player's cash balance, so
accepting the maximum never overdraws the wallet.

CANCELLATION:
A pending offer can be declined or cancelled for free. Once the fill is
running it cannot be cancelled. If the vehicle despawns mid-fill the
purchase is forfeit.
`
	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatVehicleLine(v *service.VehicleStatus) string {
	engine := "off"
	if v.EngineOn {
		engine = "on"
	}
	fuel := "untracked"
	if v.Fuel != nil {
		fuel = fmt.Sprintf("%.1f", *v.Fuel)
	}
	line := fmt.Sprintf("%s (%s) engine %s, fuel %s", v.ID, v.Model, engine, fuel)
	if v.Refueling {
		line += ", refueling"
	}
	return line
}

func formatVehicleStatus(v *service.VehicleStatus) string {
	result := fmt.Sprintf("Vehicle: %s (%s)\n", v.ID, v.Model)
	result += fmt.Sprintf("Position: (%.1f, %.1f, %.1f)\n", v.Position.X, v.Position.Y, v.Position.Z)
	if v.EngineOn {
		result += "Engine: running\n"
	} else {
		result += "Engine: off\n"
	}
	if v.Fuel != nil {
		result += fmt.Sprintf("Fuel: %.1f\n", *v.Fuel)
	} else {
		result += "Fuel: untracked\n"
	}
	if v.Refueling {
		result += "Status: refueling in progress\n"
	}
	return result
}

func formatOffer(o *service.RefuelOffer) string {
	result := fmt.Sprintf("Refuel Session for %s\n", o.PlayerID)
	result += fmt.Sprintf("Vehicle: %s\n", o.VehicleID)
	result += fmt.Sprintf("Unit price: $%.2f\n", o.UnitPrice)
	result += fmt.Sprintf("Max fillable: %d units ($%.2f)\n", o.MaxFillable, float64(o.MaxFillable)*o.UnitPrice)
	if o.Filling {
		result += fmt.Sprintf("Filling: %d units in progress\n", o.FillAmount)
	} else {
		result += fmt.Sprintf("Offer expires at: %s\n", o.ExpiresAt.Format("15:04:05"))
	}
	return result
}
