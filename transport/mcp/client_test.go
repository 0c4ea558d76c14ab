package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/openrp/fuel-stations/game/service"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	expectedResponse := map[string]interface{}{
		"id":    "v1",
		"model": "sedan",
		"fuel":  75.5,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expectedResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	err := client.apiCall("GET", "/api/vehicles/v1", nil, &response)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["id"] != expectedResponse["id"] {
		t.Errorf("Expected id %v, got %v", expectedResponse["id"], response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	err := client.apiCall("GET", "/api/vehicles", nil, nil)
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api/vehicles", nil, nil)
	if err == nil {
		t.Error("Expected error for HTTP 500 response")
	}

	if !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error' in error message, got: %v", err)
	}
}

func TestClient_apiCall_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "Engine is running."})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("POST", "/api/refuel/request", map[string]string{"player_id": "p1"}, nil)
	if err == nil {
		t.Fatal("Expected error for HTTP 409 response")
	}

	if err.Error() != "Engine is running." {
		t.Errorf("Expected API error message to surface, got: %v", err)
	}
}

func TestClient_handleRequestRefuel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/refuel/request" {
			t.Errorf("Expected POST /api/refuel/request, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["player_id"] != "p1" {
			t.Errorf("Expected player_id p1, got %s", body["player_id"])
		}

		resp := service.RefuelOffer{
			PlayerID:    "p1",
			VehicleID:   "v1",
			UnitPrice:   2,
			MaxFillable: 30,
			ExpiresAt:   time.Now().Add(time.Minute),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "request_refuel",
			Arguments: map[string]interface{}{"player_id": "p1"},
		},
	}

	result, err := client.handleRequestRefuel(ctx, request)
	if err != nil {
		t.Fatalf("handleRequestRefuel failed: %v", err)
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	if !strings.Contains(resultStr.Text, "Max fillable: 30 units") {
		t.Errorf("Expected offer detail in result, got: %s", resultStr.Text)
	}
	if !strings.Contains(resultStr.Text, "$2.00") {
		t.Errorf("Expected unit price in result, got: %s", resultStr.Text)
	}
}

func TestClient_handleAcceptOffer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/refuel/accept" {
			t.Errorf("Expected POST /api/refuel/accept, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["amount"].(float64) != 25 {
			t.Errorf("Expected amount 25, got %v", body["amount"])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Refueling started"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "accept_offer",
			Arguments: map[string]interface{}{"player_id": "p1", "amount": float64(25)},
		},
	}

	result, err := client.handleAcceptOffer(ctx, request)
	if err != nil {
		t.Fatalf("handleAcceptOffer failed: %v", err)
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	if !strings.Contains(resultStr.Text, "Refueling started") {
		t.Errorf("Expected confirmation in result, got: %s", resultStr.Text)
	}
}

func TestClient_handleListStations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stations := []service.StationInfo{
			{UID: "fuel-station-0", Name: "Downtown", Blip: true},
			{UID: "fuel-station-1", Name: "Harbor"},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stations)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "list_stations",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handleListStations(ctx, request)
	if err != nil {
		t.Fatalf("handleListStations failed: %v", err)
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	if !strings.Contains(resultStr.Text, "Downtown") || !strings.Contains(resultStr.Text, "Harbor") {
		t.Errorf("Expected both stations in result, got: %s", resultStr.Text)
	}
	if !strings.Contains(resultStr.Text, "[blip]") {
		t.Errorf("Expected blip marker in result, got: %s", resultStr.Text)
	}
}

func TestClient_handlePumpInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")
	ctx := context.Background()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "pump_instructions",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handlePumpInstructions(ctx, request)
	if err != nil {
		t.Fatalf("handlePumpInstructions failed: %v", err)
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	expectedContent := []string{
		"CONSUMPTION:",
		"REFUELING A VEHICLE:",
		"WHY A REQUEST IS REJECTED:",
		"PRICING:",
		"CANCELLATION:",
	}

	for _, content := range expectedContent {
		if !strings.Contains(resultStr.Text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}

func TestFormatVehicleStatus(t *testing.T) {
	fuel := 62.5
	status := &service.VehicleStatus{
		ID:       "v1",
		Model:    "sedan",
		EngineOn: true,
		Fuel:     &fuel,
	}

	result := formatVehicleStatus(status)

	expectedFields := []string{
		"Vehicle: v1 (sedan)",
		"Engine: running",
		"Fuel: 62.5",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}
}

func TestFormatVehicleStatus_Untracked(t *testing.T) {
	status := &service.VehicleStatus{ID: "v2", Model: "truck"}

	result := formatVehicleStatus(status)

	if !strings.Contains(result, "Fuel: untracked") {
		t.Errorf("Expected untracked fuel marker, got: %s", result)
	}
	if !strings.Contains(result, "Engine: off") {
		t.Errorf("Expected engine off, got: %s", result)
	}
}

func TestFormatOffer_Filling(t *testing.T) {
	offer := &service.RefuelOffer{
		PlayerID:    "p1",
		VehicleID:   "v1",
		UnitPrice:   2,
		MaxFillable: 40,
		Filling:     true,
		FillAmount:  20,
	}

	result := formatOffer(offer)

	if !strings.Contains(result, "Filling: 20 units in progress") {
		t.Errorf("Expected filling state in result, got: %s", result)
	}
}

func TestClient_Integration(t *testing.T) {
	client := NewClient("http://localhost:8080")

	if client == nil {
		t.Fatal("Failed to create client")
	}

	if client.mcpServer == nil {
		t.Fatal("MCP server not initialized")
	}

	if client.baseURL == "" {
		t.Error("Base URL not set")
	}

	if client.httpClient == nil {
		t.Error("HTTP client not initialized")
	}
}
