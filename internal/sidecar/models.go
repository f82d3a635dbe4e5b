package sidecar

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ModelInfo describes a model the sidecar has downloaded.
type ModelInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// PullProgress reports incremental status of a model download.
type PullProgress struct {
	Status    string `json:"status"`
	Completed int64  `json:"completed"`
	Total     int64  `json:"total"`
	Digest    string `json:"digest"`
}

// ListModels returns the models currently downloaded.
func (s *Supervisor) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL()+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list models: status %d", resp.StatusCode)
	}

	var body struct {
		Models []ModelInfo `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode model list: %w", err)
	}
	return body.Models, nil
}

// HasModel reports whether modelName is present locally, either as an
// exact match or a match on the base name before the ':' tag
// separator (so "mistral" matches "mistral:7b-instruct").
func (s *Supervisor) HasModel(ctx context.Context, modelName string) (bool, error) {
	models, err := s.ListModels(ctx)
	if err != nil {
		return false, err
	}
	baseName, _, _ := strings.Cut(modelName, ":")
	for _, m := range models {
		if m.Name == modelName {
			return true, nil
		}
		mBase, _, _ := strings.Cut(m.Name, ":")
		if mBase == baseName {
			return true, nil
		}
	}
	return false, nil
}

// PullModel downloads modelName from the registry, invoking onProgress
// (if non-nil) for each status line the sidecar streams back.
func (s *Supervisor) PullModel(ctx context.Context, modelName string, onProgress func(PullProgress)) error {
	payload, err := json.Marshal(map[string]any{"name": modelName, "stream": true})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL()+"/api/pull", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{} // no timeout: a model pull can run for minutes
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pull model: status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var progress PullProgress
		if err := json.Unmarshal([]byte(line), &progress); err != nil {
			continue
		}
		if onProgress != nil {
			onProgress(progress)
		}
		if progress.Status == "success" {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read pull stream: %w", err)
	}
	return nil
}

// DeleteModel removes a downloaded model.
func (s *Supervisor) DeleteModel(ctx context.Context, modelName string) error {
	payload, err := json.Marshal(map[string]any{"name": modelName})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.BaseURL()+"/api/delete", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete model %q: status %d", modelName, resp.StatusCode)
	}
	return nil
}
