package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")
	api.Use(s.middleware.Vendor.ResolveVendor())
	api.Use(s.middleware.RateLimit.Handler())

	api.GET("/dashboard", s.getDashboard)

	contacts := api.Group("/contacts")
	contacts.GET("", s.listContacts)
	contacts.POST("", s.createContact)
	contacts.GET("/:id", s.getContact)
	contacts.PUT("/:id", s.updateContact)
	contacts.DELETE("/:id", s.deleteContact)

	calls := api.Group("/calls")
	calls.GET("", s.listCalls)
	calls.GET("/live", s.getLiveCalls)
	calls.GET("/live/stream", s.streamLiveCalls)

	api.GET("/agents", s.listAgents)
	api.POST("/vendor-users", s.createVendorUser)

	api.POST("/cache/invalidate", s.invalidateCache)
}
