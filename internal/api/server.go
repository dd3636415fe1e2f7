// Package api exposes the discovery/connection subsystem over HTTP and
// WebSocket for the POS frontend.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tillpoint/printbridge/internal/device"
	"github.com/tillpoint/printbridge/internal/discovery"
	"github.com/tillpoint/printbridge/internal/logging"
	"github.com/tillpoint/printbridge/internal/printer"
	"github.com/tillpoint/printbridge/internal/receipt"
	"github.com/tillpoint/printbridge/internal/registry"
)

// Server is the API server.
type Server struct {
	router   *gin.Engine
	scanner  *discovery.Scanner
	manager  *printer.Manager
	registry *registry.Registry
	encoder  *receipt.Encoder
	upgrader websocket.Upgrader
	hub      *eventHub
}

// NewServer wires the API server. Scan progress events from the scanner
// are forwarded to every connected WebSocket client.
func NewServer(scanner *discovery.Scanner, manager *printer.Manager, reg *registry.Registry, encoder *receipt.Encoder) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		router:   gin.Default(),
		scanner:  scanner,
		manager:  manager,
		registry: reg,
		encoder:  encoder,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local POS frontend only
			},
		},
		hub: newEventHub(),
	}

	scanner.OnEvent(server.hub.broadcast)
	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/printers", s.handleDiscover)
	s.router.POST("/printers/rescan", s.handleRescan)
	s.router.POST("/printer/connect", s.handleConnect)
	s.router.POST("/printer/disconnect", s.handleDisconnect)
	s.router.GET("/printer/current", s.handleCurrent)
	s.router.POST("/printer/:id/name", s.handleSetName)
	s.router.POST("/print", s.handlePrint)

	s.router.GET("/ws", s.handleWebSocket)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}

// Run starts the HTTP server.
func (s *Server) Run(addr string) error {
	logging.Info("api server listening", zap.String("addr", addr))
	return s.router.Run(addr)
}

// handleDiscover returns the reachable printers. Discovery never fails:
// when nothing answers, the list is empty, not an error.
func (s *Server) handleDiscover(c *gin.Context) {
	devices := s.scanner.DiscoverPrinters(c.Request.Context())

	out := make([]device.Device, 0, len(devices))
	for _, dev := range devices {
		out = append(out, s.registry.Assign(dev))
	}

	c.JSON(200, gin.H{"printers": out})
}

// handleRescan drops the cache and runs a fresh sweep.
func (s *Server) handleRescan(c *gin.Context) {
	s.scanner.InvalidateCache()
	s.handleDiscover(c)
}

// handleConnect connects to the given device, replacing any previous
// connection.
func (s *Server) handleConnect(c *gin.Context) {
	var req struct {
		ID          string `json:"id"`
		Address     string `json:"address" binding:"required"`
		Transport   string `json:"transport" binding:"required"`
		DisplayName string `json:"display_name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "address and transport are required"})
		return
	}

	dev := device.Device{
		ID:          req.ID,
		DisplayName: req.DisplayName,
		Transport:   device.Transport(req.Transport),
		Address:     req.Address,
	}

	err := s.manager.Connect(c.Request.Context(), dev)
	switch err {
	case nil:
		c.JSON(200, gin.H{"success": true, "printer": s.manager.Current()})
	case printer.ErrBluetoothUnsupported:
		// Capability mismatch, not a transient failure: retrying on this
		// runtime cannot help, so it gets a distinct status.
		c.JSON(422, gin.H{"success": false, "error": err.Error()})
	case printer.ErrConnecting:
		c.JSON(409, gin.H{"success": false, "error": err.Error()})
	default:
		c.JSON(200, gin.H{"success": false, "error": err.Error()})
	}
}

// handleDisconnect is idempotent.
func (s *Server) handleDisconnect(c *gin.Context) {
	s.manager.Disconnect()
	c.JSON(200, gin.H{"success": true})
}

// handleCurrent returns the connected printer, or null.
func (s *Server) handleCurrent(c *gin.Context) {
	c.JSON(200, gin.H{"printer": s.manager.Current()})
}

// handleSetName stores a custom printer name.
func (s *Server) handleSetName(c *gin.Context) {
	printerID := c.Param("id")

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "name is required"})
		return
	}

	if !s.registry.SetName(printerID, req.Name) {
		c.JSON(404, gin.H{"error": "printer not found"})
		return
	}
	c.JSON(200, gin.H{"success": true})
}

// handlePrint prints either raw content or a formatted nightly report.
func (s *Server) handlePrint(c *gin.Context) {
	var req struct {
		Content  string          `json:"content"`
		Report   *receipt.Report `json:"report"`
		UserName string          `json:"user_name"`
		UserRole string          `json:"user_role"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}

	content := req.Content
	if content == "" && req.Report != nil {
		content = s.encoder.FormatReceiptContent(*req.Report, req.UserName, req.UserRole)
	}
	if content == "" {
		c.JSON(400, gin.H{"error": "content or report is required"})
		return
	}

	ok, err := s.manager.Print(content)
	if err == printer.ErrNotConnected {
		c.JSON(409, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"success": ok})
}
