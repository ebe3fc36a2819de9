// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command cogentx is the terminal client for the CogentX agent service.
//
// Usage:
//
//	cogentx run "Build a newsletter-writing agent"
//	cogentx resume <session-id> "Use SendGrid for delivery"
//	cogentx resume <session-id> "finish_conversation"
//	cogentx reset <session-id>
//
// The service address comes from --server or the COGENTX_SERVER environment
// variable; --api-key or COGENTX_API_KEY supplies the bearer token when the
// service requires one.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	serverURL string
	apiKey    string
	sessionID string

	rootCmd = &cobra.Command{
		Use:   "cogentx",
		Short: "A cli to drive CogentX agent-building sessions",
		Long: `CogentX plans and generates AI agent code in stages, pausing
after each response so you can steer the next one. This client starts
sessions, resumes them with follow-up messages, and discards them.`,
	}

	runCmd = &cobra.Command{
		Use:   "run [request]",
		Short: "Start a new session and stream the generated plan and code",
		Args:  cobra.ExactArgs(1),
		RunE:  runSession,
	}

	resumeCmd = &cobra.Command{
		Use:   "resume [session-id] [message]",
		Short: "Continue a suspended session with a follow-up message",
		Args:  cobra.ExactArgs(2),
		RunE:  resumeSession,
	}

	resetCmd = &cobra.Command{
		Use:   "reset [session-id]",
		Short: "Discard a session and its saved state",
		Args:  cobra.ExactArgs(1),
		RunE:  resetSession,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Agent service base URL (default COGENTX_SERVER or http://localhost:12310)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Bearer token for the agent API (default COGENTX_API_KEY)")
	runCmd.Flags().StringVar(&sessionID, "session-id", "", "Reuse a caller-chosen session id instead of a generated one")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(resetCmd)

	log.SetFlags(0)
}

func resolveServer() string {
	if serverURL != "" {
		return serverURL
	}
	if env := os.Getenv("COGENTX_SERVER"); env != "" {
		return env
	}
	return "http://localhost:12310"
}

func resolveAPIKey() string {
	if apiKey != "" {
		return apiKey
	}
	return os.Getenv("COGENTX_API_KEY")
}

func runSession(cmd *cobra.Command, args []string) error {
	client := newAgentClient(resolveServer(), resolveAPIKey())
	return client.Stream(cmd.Context(), "/api/agent/run", agentRequest{
		SessionID: sessionID,
		Message:   args[0],
	})
}

func resumeSession(cmd *cobra.Command, args []string) error {
	client := newAgentClient(resolveServer(), resolveAPIKey())
	return client.Stream(cmd.Context(), "/api/agent/resume", agentRequest{
		SessionID: args[0],
		Message:   args[1],
	})
}

func resetSession(cmd *cobra.Command, args []string) error {
	client := newAgentClient(resolveServer(), resolveAPIKey())
	return client.Reset(cmd.Context(), args[0])
}
