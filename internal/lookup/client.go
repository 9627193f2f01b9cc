// Package lookup implements the client for the external identity-data
// provider. Given a raw CPF it returns the biographic record the provider
// holds: full name, formatted national ID, birth timestamp, and the list of
// related persons.
//
// The call is synchronous and never retried by callers; transient transport
// failures surface as ErrUnavailable and a provider-side miss as ErrNoData so
// the handler layer can map them to 500 and 404 respectively.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrNoData is returned when the provider answers but reports that it
	// holds no record for the CPF (envelope status != 200).
	ErrNoData = errors.New("no data for cpf")

	// ErrUnavailable is returned on transport failure or a non-success HTTP
	// status from the provider.
	ErrUnavailable = errors.New("lookup provider unavailable")
)

// Relative is one entry of the provider's related-persons list.
type Relative struct {
	Vinculo string `json:"vinculo"`
	Nome    string `json:"nome"`
}

// Person is the provider's biographic record for a CPF.
type Person struct {
	Nome     string     `json:"nome"`
	CPF      string     `json:"cpf"`
	Nasc     string     `json:"nasc"` // "YYYY-MM-DD HH:MM:SS", may be empty
	Parentes []Relative `json:"parentes"`
}

// envelope is the provider's response wrapper.
type envelope struct {
	Status int    `json:"status"`
	Data   Person `json:"data"`
}

// Client queries the identity provider over HTTP. Safe for concurrent use.
type Client struct {
	http   *resty.Client
	apiKey string
}

// New builds a Client for the provider at baseURL authenticating with apiKey
// (the provider embeds the key as a path segment). The timeout bounds the
// whole call; the provider itself specifies none.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient, apiKey: apiKey}
}

// ByCPF fetches the biographic record for an 11-digit CPF.
func (c *Client) ByCPF(ctx context.Context, cpf string) (*Person, error) {
	var out envelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"apiKey": c.apiKey,
			"cpf":    cpf,
		}).
		SetResult(&out).
		Get("/{apiKey}/cpf/{cpf}")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: provider returned HTTP %d", ErrUnavailable, resp.StatusCode())
	}
	if out.Status != 200 {
		return nil, fmt.Errorf("%w: provider status %d", ErrNoData, out.Status)
	}
	return &out.Data, nil
}

// FirstChildName scans the related-persons list for the first entry tagged as
// daughter/son and returns that person's name, or "" when there is none.
func (p *Person) FirstChildName() string {
	for _, rel := range p.Parentes {
		if rel.Vinculo == "FILHA(O)" {
			return rel.Nome
		}
	}
	return ""
}
