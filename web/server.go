// Package web exposes the ops HTTP surface: engine statistics, runtime
// configuration, world topology, packet injection and a websocket stream of
// statistics frames.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/example/info_propagation_sim/config"
	"github.com/example/info_propagation_sim/core"
	"github.com/example/info_propagation_sim/engine"
	"github.com/example/info_propagation_sim/hooks"
	"github.com/example/info_propagation_sim/observability"
)

// Deps are the collaborators the ops server reads from and drives.
type Deps struct {
	Engine  *engine.Engine
	Broker  *hooks.Broker
	Graph   core.GraphSource
	Version string
}

// Server is the gin ops server.
type Server struct {
	engine  *engine.Engine
	broker  *hooks.Broker
	graph   core.GraphSource
	version string

	log      zerolog.Logger
	router   *gin.Engine
	hub      *statsHub
	addr     string
	interval time.Duration
	started  time.Time
}

// NewServer wires the router, middleware and routes. The websocket stream
// only carries frames once Run is looping.
func NewServer(deps Deps, cfg config.OpsConfig, logger zerolog.Logger) (*Server, error) {
	if deps.Engine == nil {
		return nil, errors.New("ops server requires an engine")
	}
	if deps.Graph == nil {
		return nil, errors.New("ops server requires a graph source")
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}

	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.RequestMetrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST", "PUT"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		engine:   deps.Engine,
		broker:   deps.Broker,
		graph:    deps.Graph,
		version:  deps.Version,
		log:      logger,
		router:   r,
		hub:      newStatsHub(logger),
		addr:     cfg.Addr,
		interval: time.Second,
		started:  time.Now(),
	}
	s.registerRoutes()
	return s, nil
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, pushing a statistics frame to every
// websocket client each interval.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("ops server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutCtx)
		case err := <-errCh:
			return err
		case <-ticker.C:
			s.hub.broadcastFrame(s.currentFrame())
		}
	}
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": "propsim",
			"version": s.version,
		})
	})
	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   s.graph.Snapshot() != nil,
			"uptime":  time.Since(s.started).String(),
			"service": "propsim",
			"version": s.version,
		})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	api.GET("/stats", s.handleStats)
	api.POST("/stats/reset", s.handleStatsReset)
	api.GET("/config", s.handleConfigGet)
	api.PUT("/config", s.handleConfigPut)
	api.GET("/world", s.handleWorld)
	api.GET("/consumers", s.handleConsumers)
	api.POST("/propagate", s.handlePropagate)

	s.router.GET("/ws/stats", func(c *gin.Context) {
		s.hub.handle(c, s.currentFrame())
	})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.GetStatistics())
}

func (s *Server) handleStatsReset(c *gin.Context) {
	s.engine.ResetStatistics()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfigGet(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Tunables())
}

type configUpdateRequest struct {
	SpeedMultiplier *float64 `json:"speedMultiplier,omitempty"`
	DegradationRate *float64 `json:"degradationRate,omitempty"`
	MaxDistance     *float64 `json:"maxDistance,omitempty"`
}

func (s *Server) handleConfigPut(c *gin.Context) {
	var req configUpdateRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// Validate the whole update before applying any part of it.
	candidate := s.engine.Tunables()
	if req.SpeedMultiplier != nil {
		candidate.SpeedMultiplier = *req.SpeedMultiplier
	}
	if req.DegradationRate != nil {
		candidate.DegradationRate = *req.DegradationRate
	}
	if req.MaxDistance != nil {
		candidate.MaxDistance = *req.MaxDistance
	}
	if err := candidate.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.SpeedMultiplier != nil {
		if err := s.engine.SetPropagationSpeedMultiplier(*req.SpeedMultiplier); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if req.DegradationRate != nil {
		if err := s.engine.SetAccuracyDegradationRate(*req.DegradationRate); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if req.MaxDistance != nil {
		if err := s.engine.SetMaxPropagationDistance(*req.MaxDistance); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, s.engine.Tunables())
}

// ProvinceView is the wire shape of one province.
type ProvinceView struct {
	ID    uint32 `json:"id"`
	Realm uint32 `json:"realm"`
	Name  string `json:"name,omitempty"`
}

// RoadView is the wire shape of one bidirectional road.
type RoadView struct {
	From uint32  `json:"from"`
	To   uint32  `json:"to"`
	Cost float64 `json:"cost"`
}

func (s *Server) handleWorld(c *gin.Context) {
	g := s.graph.Snapshot()
	if g == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no world loaded"})
		return
	}

	provinces := make([]ProvinceView, 0, g.Len())
	var roads []RoadView
	for _, id := range g.ProvinceIDs() {
		node, ok := g.Province(id)
		if !ok {
			continue
		}
		provinces = append(provinces, ProvinceView{
			ID:    uint32(node.ID),
			Realm: uint32(node.Realm),
			Name:  node.Name,
		})
		for _, adj := range node.Neighbors {
			// Roads are stored in both directions; emit each once.
			if node.ID < adj.To {
				roads = append(roads, RoadView{
					From: uint32(node.ID),
					To:   uint32(adj.To),
					Cost: adj.Cost,
				})
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"provinces": provinces, "roads": roads})
}

// ConsumerView is the wire shape of one registered hook consumer.
type ConsumerView struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleConsumers(c *gin.Context) {
	descs := s.broker.ListAllConsumers()
	views := make([]ConsumerView, 0, len(descs))
	for _, d := range descs {
		views = append(views, ConsumerView{
			Name:        d.Name,
			Category:    string(d.Category),
			Description: d.Description,
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	c.JSON(http.StatusOK, gin.H{"consumers": views})
}

type propagateRequest struct {
	Kind        string  `json:"kind"`
	Source      uint32  `json:"source"`
	Originator  uint32  `json:"originator"`
	Severity    float64 `json:"severity"`
	Relevance   string  `json:"relevance,omitempty"`
	Description string  `json:"description,omitempty"`
	Target      *uint32 `json:"target,omitempty"`
}

// DeliveryView is the wire shape of one delivery event.
type DeliveryView struct {
	Receiver       uint32  `json:"receiver"`
	ReceiverRealm  uint32  `json:"receiverRealm"`
	Kind           string  `json:"kind"`
	Relevance      string  `json:"relevance"`
	HopCount       uint32  `json:"hopCount"`
	Accuracy       float64 `json:"accuracy"`
	CumulativeCost float64 `json:"cumulativeCost"`
	DelayDays      float64 `json:"delayDays"`
}

func newDeliveryView(ev core.DeliveryEvent) DeliveryView {
	return DeliveryView{
		Receiver:       uint32(ev.Receiver),
		ReceiverRealm:  uint32(ev.ReceiverRealm),
		Kind:           string(ev.Packet.Type),
		Relevance:      ev.Relevance.String(),
		HopCount:       ev.HopCount,
		Accuracy:       ev.Accuracy,
		CumulativeCost: ev.CumulativeCost,
		DelayDays:      ev.DelayDays,
	}
}

func (s *Server) handlePropagate(c *gin.Context) {
	var req propagateRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	kind, ok := core.ParseInformationType(req.Kind)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown kind " + req.Kind})
		return
	}
	if req.Source == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source province is required"})
		return
	}
	if req.Severity < 0 || req.Severity > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "severity must be within [0,1]"})
		return
	}
	rel := core.DefaultRelevance(kind)
	if req.Relevance != "" {
		rel, ok = core.ParseRelevanceTier(req.Relevance)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown relevance " + req.Relevance})
			return
		}
	}

	packet := core.NewPacket(kind, rel, req.Severity, core.ProvinceID(req.Source), core.EntityID(req.Originator))
	packet.Description = req.Description

	if req.Target != nil {
		ev, delivered := s.engine.PropagateTo(packet, core.ProvinceID(*req.Target))
		if !delivered {
			c.JSON(http.StatusOK, gin.H{"delivered": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"delivered": true, "delivery": newDeliveryView(ev)})
		return
	}

	s.engine.StartPropagation(packet)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "stats": s.engine.GetStatistics()})
}

func (s *Server) currentFrame() statsFrame {
	return statsFrame{At: time.Now(), Stats: s.engine.GetStatistics()}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
