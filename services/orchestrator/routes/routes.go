// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/varunisrani/cogentxui/services/orchestrator/handlers"
	"github.com/varunisrani/cogentxui/services/orchestrator/middleware"
	"github.com/varunisrani/cogentxui/services/workflow"
)

func SetupRoutes(router *gin.Engine, engine *workflow.Engine, apiKey string) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/healthz", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Agent API group
	api := router.Group("/api/agent")
	api.Use(middleware.APIKeyAuth(apiKey))
	{
		api.POST("/run", handlers.HandleAgentRun(engine))
		api.POST("/resume", handlers.HandleAgentResume(engine))
		api.DELETE("/session/:sessionId", handlers.HandleAgentReset(engine))
	}
}
