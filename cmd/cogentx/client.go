// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// agentRequest is the body for run and resume calls.
type agentRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// streamEvent mirrors the service's SSE payload.
type streamEvent struct {
	Type          string `json:"type"`
	Content       string `json:"content,omitempty"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	SessionId     string `json:"session_id,omitempty"`
	SessionStatus string `json:"session_status,omitempty"`
}

// errorResponse is the JSON body of a non-streaming failure.
type errorResponse struct {
	Error string `json:"error"`
}

// agentClient talks to the agent service over HTTP and SSE.
type agentClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func newAgentClient(baseURL, apiKey string) *agentClient {
	return &agentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		// No overall timeout: streams stay open while the model generates.
		http: &http.Client{},
	}
}

// Stream posts the request and renders the SSE response to stdout.
//
// Token content is written as it arrives; status lines and the final
// session summary go to stderr so piped output stays clean.
func (c *agentClient) Stream(ctx context.Context, path string, req agentRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	c.authorize(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return c.render(resp.Body)
}

// Reset deletes the session on the server.
func (c *agentClient) Reset(ctx context.Context, sessionID string) error {
	url := fmt.Sprintf("%s/api/agent/session/%s", c.baseURL, sessionID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	c.authorize(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("calling reset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return decodeError(resp)
	}
	fmt.Fprintf(os.Stderr, "session %s discarded\n", sessionID)
	return nil
}

func (c *agentClient) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// render consumes an SSE body until the done or error event.
func (c *agentClient) render(body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var streamed bool
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			// event: and comment lines carry no payload we need; the
			// type is repeated inside the JSON data.
			continue
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			continue
		}

		switch event.Type {
		case "token":
			streamed = true
			fmt.Print(event.Content)
		case "status":
			fmt.Fprintln(os.Stderr, event.Message)
		case "error":
			if streamed {
				fmt.Println()
			}
			return fmt.Errorf("agent error: %s", event.Error)
		case "done":
			if streamed {
				fmt.Println()
			}
			fmt.Fprintf(os.Stderr, "\nsession %s is %s", event.SessionId, event.SessionStatus)
			if event.SessionStatus == "suspended" {
				fmt.Fprintf(os.Stderr, "; continue with: cogentx resume %s \"...\"", event.SessionId)
			}
			fmt.Fprintln(os.Stderr)
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stream: %w", err)
	}
	return fmt.Errorf("stream ended without a done event")
}

func decodeError(resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var errResp errorResponse
	if json.Unmarshal(payload, &errResp) == nil && errResp.Error != "" {
		return fmt.Errorf("%s (HTTP %d)", errResp.Error, resp.StatusCode)
	}
	return fmt.Errorf("HTTP %d from agent service", resp.StatusCode)
}
