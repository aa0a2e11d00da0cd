package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	pin        string
	httpClient *http.Client
}

// NewAPIClient creates a new API client. pin is sent on team requests.
func NewAPIClient(baseURL, pin string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		pin:     pin,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type Hero struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	PowerScore float64 `json:"powerScore"`
	IsFavorite bool    `json:"isFavorite"`
}

type Team struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Members []Hero `json:"members"`
}

type StateSummary struct {
	Loading   bool   `json:"loading"`
	Error     string `json:"error"`
	Heroes    int    `json:"heroes"`
	Favorites int    `json:"favorites"`
	Teams     int    `json:"teams"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *APIClient) State() (*StateSummary, error) {
	var out StateSummary
	if err := c.do(http.MethodGet, "/state", nil, false, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) Heroes(query string) ([]Hero, error) {
	path := "/heroes"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var out struct {
		Heroes []Hero `json:"heroes"`
	}
	if err := c.do(http.MethodGet, path, nil, false, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Heroes, nil
}

func (c *APIClient) Refresh() ([]Hero, error) {
	var out struct {
		Heroes []Hero `json:"heroes"`
	}
	if err := c.do(http.MethodPost, "/heroes/refresh", nil, false, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Heroes, nil
}

func (c *APIClient) SetFavorite(heroID int, favorite bool) ([]Hero, error) {
	method := http.MethodPut
	if !favorite {
		method = http.MethodDelete
	}
	var out struct {
		Favorites []Hero `json:"favorites"`
	}
	if err := c.do(method, fmt.Sprintf("/favorites/%d", heroID), nil, false, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Favorites, nil
}

func (c *APIClient) Teams() ([]Team, error) {
	var out struct {
		Teams []Team `json:"teams"`
	}
	if err := c.do(http.MethodGet, "/teams", nil, false, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Teams, nil
}

func (c *APIClient) CreateTeam(name string) (*Team, error) {
	var out Team
	body := map[string]string{"name": name}
	if err := c.do(http.MethodPost, "/teams", body, true, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) AddMember(teamID string, heroID int) (*Team, error) {
	var out Team
	path := fmt.Sprintf("/teams/%s/members/%d", url.PathEscape(teamID), heroID)
	if err := c.do(http.MethodPut, path, nil, true, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) DeleteTeam(teamID string) error {
	return c.do(http.MethodDelete, "/teams/"+url.PathEscape(teamID), nil, true, http.StatusNoContent, nil)
}

// HTTP helpers

func (c *APIClient) do(method, path string, body interface{}, gated bool, want int, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if gated && c.pin != "" {
		req.Header.Set("X-Device-Pin", c.pin)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var apiErr apiError
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Code != "" {
			return fmt.Errorf("%s %s failed (status %d): %s: %s", method, path, resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("%s %s failed (status %d)", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
