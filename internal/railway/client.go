package railway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultURL = "https://backboard.railway.app/graphql/v2"

// Client talks to the Railway GraphQL API
type Client struct {
	url       string
	token     string
	projectID string
	serviceID string
	client    *http.Client
}

// NewClient creates a client for one project/service pair
func NewClient(url, token, projectID, serviceID string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url:       url,
		token:     token,
		projectID: projectID,
		serviceID: serviceID,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type gqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type gqlError struct {
	Message string `json:"message"`
}

// APIError is a non-2xx status or a GraphQL error list
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("railway API status %d: %s", e.Status, e.Body)
}

func (c *Client) do(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("railway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read railway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []gqlError      `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode railway response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return &APIError{Status: resp.StatusCode, Body: envelope.Errors[0].Message}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}

const activeDeploymentQuery = `
query ($projectId: String!, $serviceId: String!) {
  service(projectId: $projectId, serviceId: $serviceId) {
    deployments(first: 1, environmentId: null) {
      edges {
        node {
          id
          status
        }
      }
    }
  }
}`

// ActiveDeployment returns the id of the latest deployment when it is live,
// or "" when there is none.
func (c *Client) ActiveDeployment(ctx context.Context) (string, error) {
	var data struct {
		Service struct {
			Deployments struct {
				Edges []struct {
					Node struct {
						ID     string `json:"id"`
						Status string `json:"status"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"deployments"`
		} `json:"service"`
	}
	err := c.do(ctx, activeDeploymentQuery, map[string]interface{}{
		"projectId": c.projectID,
		"serviceId": c.serviceID,
	}, &data)
	if err != nil {
		return "", err
	}

	edges := data.Service.Deployments.Edges
	if len(edges) == 0 || edges[0].Node.Status != "SUCCESS" {
		return "", nil
	}
	return edges[0].Node.ID, nil
}

const removeDeploymentMutation = `
mutation ($id: String!) {
  deploymentRemove(id: $id)
}`

// RemoveDeployment stops and removes a deployment
func (c *Client) RemoveDeployment(ctx context.Context, id string) error {
	return c.do(ctx, removeDeploymentMutation, map[string]interface{}{"id": id}, nil)
}

const deployServiceMutation = `
mutation DeployService($input: ServiceDeployInput!) {
  serviceDeploy(input: $input) {
    id
  }
}`

// TriggerDeployment starts a new deployment of the service
func (c *Client) TriggerDeployment(ctx context.Context) error {
	return c.do(ctx, deployServiceMutation, map[string]interface{}{
		"input": map[string]interface{}{
			"serviceId": c.serviceID,
			"projectId": c.projectID,
		},
	}, nil)
}
