// Package service provides the business logic layer for the fuel station
// server.
//
// The service package implements:
//   - Vehicle and player lifecycle operations
//   - Engine start arbitration through the guard chain
//   - The refuel request/accept/cancel flow
//   - Station listing and admin fuel/cash adjustments
//
// Core Interfaces:
//
// FuelService is the main service interface providing high-level operations.
// FuelEngine and RefuelEngine abstract the two simulation engines.
// ProfileManager exposes profile discovery to the API.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the simulation engines, translating between wire DTOs and the world's
// entity snapshots. It owns no state of its own; everything lives in the
// world registry, the engines, and the storage collaborators.
package service
