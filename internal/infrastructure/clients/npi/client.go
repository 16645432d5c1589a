package npi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carefinder/backend/internal/domain/entities"
	"github.com/carefinder/backend/internal/domain/providers"
	apperrors "github.com/carefinder/backend/pkg/errors"
)

const (
	defaultBaseURL = "https://npiregistry.cms.hhs.gov/api/"
	apiVersion     = "2.1"
)

// Client queries the NPPES NPI registry.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new registry client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type registryResponse struct {
	ResultCount int              `json:"result_count"`
	Results     []registryRecord `json:"results"`
}

type registryRecord struct {
	Number          json.Number        `json:"number"`
	EnumerationType string             `json:"enumeration_type"`
	Basic           registryBasic      `json:"basic"`
	Addresses       []registryAddress  `json:"addresses"`
	Taxonomies      []registryTaxonomy `json:"taxonomies"`
}

type registryBasic struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Credential       string `json:"credential"`
	OrganizationName string `json:"organization_name"`
}

type registryAddress struct {
	AddressPurpose  string `json:"address_purpose"`
	Address1        string `json:"address_1"`
	Address2        string `json:"address_2"`
	City            string `json:"city"`
	State           string `json:"state"`
	PostalCode      string `json:"postal_code"`
	TelephoneNumber string `json:"telephone_number"`
}

type registryTaxonomy struct {
	Code    string `json:"code"`
	Desc    string `json:"desc"`
	Primary bool   `json:"primary"`
}

// Search returns providers matching a taxonomy and location.
func (c *Client) Search(ctx context.Context, query providers.RegistryQuery) ([]entities.Provider, error) {
	params := url.Values{}
	params.Set("version", apiVersion)
	if query.Taxonomy != "" {
		params.Set("taxonomy_description", query.Taxonomy)
	}
	if query.City != "" {
		params.Set("city", query.City)
	}
	if query.State != "" {
		params.Set("state", query.State)
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}
	params.Set("limit", fmt.Sprintf("%d", limit))

	var response registryResponse
	if err := c.doJSON(ctx, params, &response); err != nil {
		return nil, err
	}

	out := make([]entities.Provider, 0, len(response.Results))
	for _, record := range response.Results {
		out = append(out, record.toProvider())
	}
	return out, nil
}

// GetByNPI returns the provider with the given identifier. The npi must
// already be format-checked by the caller; a registry miss is reported as
// a not-found error, not a transport failure.
func (c *Client) GetByNPI(ctx context.Context, npi string) (*entities.Provider, error) {
	params := url.Values{}
	params.Set("version", apiVersion)
	params.Set("number", npi)

	var response registryResponse
	if err := c.doJSON(ctx, params, &response); err != nil {
		return nil, err
	}

	if response.ResultCount == 0 || len(response.Results) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no provider with NPI %s", npi))
	}

	provider := response.Results[0].toProvider()
	return &provider, nil
}

func (c *Client) doJSON(ctx context.Context, params url.Values, out interface{}) error {
	endpoint := c.baseURL + "/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("npi registry returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}

	return nil
}

func (r *registryRecord) toProvider() entities.Provider {
	provider := entities.Provider{
		NPI:  r.Number.String(),
		Name: r.displayName(),
	}

	if taxonomy := r.primaryTaxonomy(); taxonomy != nil {
		provider.Specialty = taxonomy.Desc
	}

	if addr := r.locationAddress(); addr != nil {
		street := addr.Address1
		if addr.Address2 != "" {
			street += ", " + addr.Address2
		}
		zip := addr.PostalCode
		if len(zip) > 5 {
			zip = zip[:5]
		}
		provider.Address = entities.Address{
			Street: street,
			City:   addr.City,
			State:  addr.State,
			Zip:    zip,
			Full:   fmt.Sprintf("%s, %s, %s %s", street, addr.City, addr.State, zip),
		}
		provider.Phone = addr.TelephoneNumber
	}

	return provider
}

func (r *registryRecord) displayName() string {
	// NPI-1 records are individual providers; everything else is an
	// organization.
	if r.EnumerationType == "NPI-1" {
		name := strings.TrimSpace(r.Basic.FirstName + " " + r.Basic.LastName)
		if r.Basic.Credential != "" {
			name += ", " + r.Basic.Credential
		}
		return name
	}
	if r.Basic.OrganizationName != "" {
		return r.Basic.OrganizationName
	}
	return "Unknown Provider"
}

func (r *registryRecord) locationAddress() *registryAddress {
	for i := range r.Addresses {
		if r.Addresses[i].AddressPurpose == "LOCATION" {
			return &r.Addresses[i]
		}
	}
	if len(r.Addresses) > 0 {
		return &r.Addresses[0]
	}
	return nil
}

func (r *registryRecord) primaryTaxonomy() *registryTaxonomy {
	for i := range r.Taxonomies {
		if r.Taxonomies[i].Primary {
			return &r.Taxonomies[i]
		}
	}
	if len(r.Taxonomies) > 0 {
		return &r.Taxonomies[0]
	}
	return nil
}
