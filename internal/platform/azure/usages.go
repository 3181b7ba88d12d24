package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

const (
	// ManagementEndpoint is the default Azure Resource Manager endpoint.
	ManagementEndpoint = "https://management.azure.com"

	managementScope = "https://management.azure.com/.default"
)

// Usage is one usage/limit counter as reported by a provider's usages
// endpoint.
type Usage struct {
	Name          string
	LocalizedName string
	CurrentValue  float64
	Limit         float64
}

// UsagesClient lists usage counters from the provider-generic ARM
// usages endpoints. Most resource providers expose the same list shape
// under their own namespace; only Microsoft.Compute gets a typed SDK
// client instead.
type UsagesClient struct {
	cred       azcore.TokenCredential
	endpoint   string
	httpClient *http.Client
}

// NewUsagesClient creates a usages client against the public ARM endpoint.
func NewUsagesClient(cred azcore.TokenCredential) *UsagesClient {
	return NewUsagesClientWithEndpoint(cred, ManagementEndpoint)
}

// NewUsagesClientWithEndpoint creates a client with a custom endpoint (for testing).
func NewUsagesClientWithEndpoint(cred azcore.TokenCredential, endpoint string) *UsagesClient {
	return &UsagesClient{
		cred:     cred,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// List fetches every usage counter under the given ARM path, following
// pagination links.
func (c *UsagesClient) List(ctx context.Context, path, apiVersion string) ([]Usage, error) {
	token, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{managementScope},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire management token: %w", err)
	}

	url := fmt.Sprintf("%s%s?api-version=%s", c.endpoint, path, apiVersion)

	var usages []Usage
	for url != "" {
		page, next, err := c.fetchPage(ctx, url, token.Token)
		if err != nil {
			return nil, err
		}
		usages = append(usages, page...)
		url = next
	}

	return usages, nil
}

func (c *UsagesClient) fetchPage(ctx context.Context, url, token string) ([]Usage, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch usages: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("usages API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response: %w", err)
	}

	return parseUsagesResponse(body)
}

// ARM usages response structures. Some providers report counters at the
// top level of each entry, others nest them under properties.

type usagesResponse struct {
	Value    []usageEntry `json:"value"`
	NextLink string       `json:"nextLink"`
}

type usageEntry struct {
	Name         *usageName       `json:"name"`
	CurrentValue *float64         `json:"currentValue"`
	Limit        *float64         `json:"limit"`
	Properties   *usageProperties `json:"properties"`
}

type usageProperties struct {
	Name         *usageName `json:"name"`
	CurrentValue *float64   `json:"currentValue"`
	Limit        *float64   `json:"limit"`
}

type usageName struct {
	Value          string `json:"value"`
	LocalizedValue string `json:"localizedValue"`
}

func parseUsagesResponse(data []byte) ([]Usage, string, error) {
	var resp usagesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, "", fmt.Errorf("failed to parse usages response: %w", err)
	}

	usages := make([]Usage, 0, len(resp.Value))
	for _, entry := range resp.Value {
		name, current, limit := entry.Name, entry.CurrentValue, entry.Limit
		if entry.Properties != nil {
			if name == nil {
				name = entry.Properties.Name
			}
			if current == nil {
				current = entry.Properties.CurrentValue
			}
			if limit == nil {
				limit = entry.Properties.Limit
			}
		}
		if name == nil {
			continue
		}

		usage := Usage{Name: name.Value, LocalizedName: name.LocalizedValue}
		if current != nil {
			usage.CurrentValue = *current
		}
		if limit != nil {
			usage.Limit = *limit
		}
		usages = append(usages, usage)
	}

	return usages, resp.NextLink, nil
}
