package npi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carefinder/backend/internal/domain/providers"
	"github.com/carefinder/backend/internal/infrastructure/clients/npi"
	apperrors "github.com/carefinder/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func registryFixture() map[string]interface{} {
	return map[string]interface{}{
		"result_count": 1,
		"results": []map[string]interface{}{
			{
				"number":           1234567890,
				"enumeration_type": "NPI-1",
				"basic": map[string]string{
					"first_name": "Jane",
					"last_name":  "Smith",
					"credential": "MD",
				},
				"addresses": []map[string]string{
					{
						"address_purpose":  "MAILING",
						"address_1":        "PO Box 100",
						"city":             "Somerville",
						"state":            "MA",
						"postal_code":      "02144",
						"telephone_number": "617-555-0199",
					},
					{
						"address_purpose":  "LOCATION",
						"address_1":        "1 Main St",
						"address_2":        "Suite 4",
						"city":             "Boston",
						"state":            "MA",
						"postal_code":      "021101234",
						"telephone_number": "617-555-0100",
					},
				},
				"taxonomies": []map[string]interface{}{
					{"code": "208D00000X", "desc": "General Practice", "primary": false},
					{"code": "207RC0000X", "desc": "Cardiovascular Disease", "primary": true},
				},
			},
		},
	}
}

func TestClient_Search_BuildsQueryParams(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"version":              r.URL.Query().Get("version"),
			"taxonomy_description": r.URL.Query().Get("taxonomy_description"),
			"city":                 r.URL.Query().Get("city"),
			"state":                r.URL.Query().Get("state"),
			"limit":                r.URL.Query().Get("limit"),
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"result_count": 0, "results": []interface{}{}})
	}))
	defer server.Close()

	client := npi.NewClient(server.URL)

	_, err := client.Search(context.Background(), providers.RegistryQuery{
		Taxonomy: "207RC0000X",
		City:     "Boston",
		State:    "MA",
		Limit:    20,
	})

	assert.NoError(t, err)
	assert.Equal(t, "2.1", gotQuery["version"])
	assert.Equal(t, "207RC0000X", gotQuery["taxonomy_description"])
	assert.Equal(t, "Boston", gotQuery["city"])
	assert.Equal(t, "MA", gotQuery["state"])
	assert.Equal(t, "20", gotQuery["limit"])
}

func TestClient_Search_MapsIndividualProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(registryFixture())
	}))
	defer server.Close()

	client := npi.NewClient(server.URL)

	found, err := client.Search(context.Background(), providers.RegistryQuery{Taxonomy: "cardiology"})

	assert.NoError(t, err)
	assert.Len(t, found, 1)

	provider := found[0]
	assert.Equal(t, "1234567890", provider.NPI)
	assert.Equal(t, "Jane Smith, MD", provider.Name)
	assert.Equal(t, "Cardiovascular Disease", provider.Specialty)

	// The LOCATION address wins over MAILING; zip is truncated to five digits.
	assert.Equal(t, "1 Main St, Suite 4", provider.Address.Street)
	assert.Equal(t, "Boston", provider.Address.City)
	assert.Equal(t, "MA", provider.Address.State)
	assert.Equal(t, "02110", provider.Address.Zip)
	assert.Equal(t, "1 Main St, Suite 4, Boston, MA 02110", provider.Address.Full)
	assert.Equal(t, "617-555-0100", provider.Phone)
}

func TestClient_Search_MapsOrganizationProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result_count": 1,
			"results": []map[string]interface{}{
				{
					"number":           "1987654321",
					"enumeration_type": "NPI-2",
					"basic":            map[string]string{"organization_name": "Boston Heart Clinic"},
				},
			},
		})
	}))
	defer server.Close()

	client := npi.NewClient(server.URL)

	found, err := client.Search(context.Background(), providers.RegistryQuery{Taxonomy: "cardiology"})

	assert.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, "1987654321", found[0].NPI)
	assert.Equal(t, "Boston Heart Clinic", found[0].Name)
}

func TestClient_Search_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := npi.NewClient(server.URL)

	_, err := client.Search(context.Background(), providers.RegistryQuery{Taxonomy: "cardiology"})
	assert.Error(t, err)
}

func TestClient_GetByNPI_Found(t *testing.T) {
	var gotNumber string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotNumber = r.URL.Query().Get("number")
		json.NewEncoder(w).Encode(registryFixture())
	}))
	defer server.Close()

	client := npi.NewClient(server.URL)

	provider, err := client.GetByNPI(context.Background(), "1234567890")

	assert.NoError(t, err)
	assert.Equal(t, "1234567890", gotNumber)
	assert.Equal(t, "Jane Smith, MD", provider.Name)
}

func TestClient_GetByNPI_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"result_count": 0, "results": []interface{}{}})
	}))
	defer server.Close()

	client := npi.NewClient(server.URL)

	_, err := client.GetByNPI(context.Background(), "1234567890")

	var appErr *apperrors.AppError
	if assert.ErrorAs(t, err, &appErr) {
		assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
	}
}
