package hh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mkurbatov/jobhub/internal/models"
)

const SourceName = "headhunter"

// publishedAtLayout is the offset format the HeadHunter API uses, which is
// not plain RFC3339 (no colon in the zone offset).
const publishedAtLayout = "2006-01-02T15:04:05-0700"

// Client talks to the HeadHunter public API.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Token   string
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		BaseURL: baseURL,
		Token:   token,
	}
}

type SearchParams struct {
	Text    string
	Area    string
	Page    int
	PerPage int
}

type Page struct {
	Items   []Vacancy `json:"items"`
	Found   int       `json:"found"`
	Pages   int       `json:"pages"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
}

type named struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Vacancy struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"alternate_url"`
	Area   named  `json:"area"`
	Salary *struct {
		From     *int   `json:"from"`
		To       *int   `json:"to"`
		Currency string `json:"currency"`
	} `json:"salary"`
	Employer   named `json:"employer"`
	Experience named `json:"experience"`
	Employment named `json:"employment"`
	Schedule   named `json:"schedule"`
	Snippet    struct {
		Requirement    string `json:"requirement"`
		Responsibility string `json:"responsibility"`
	} `json:"snippet"`
	HasTest     bool   `json:"has_test"`
	Archived    bool   `json:"archived"`
	PublishedAt string `json:"published_at"`
}

// GetVacancies fetches a single result page.
func (c *Client) GetVacancies(ctx context.Context, params SearchParams) (*Page, error) {
	q := url.Values{}
	if params.Text != "" {
		q.Set("text", params.Text)
	}
	if params.Area != "" {
		q.Set("area", params.Area)
	}
	q.Set("page", strconv.Itoa(params.Page))
	perPage := params.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}
	q.Set("per_page", strconv.Itoa(perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/vacancies?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hh request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("hh request: status %d: %s", res.StatusCode, body)
	}

	var page Page
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("hh response: %w", err)
	}
	return &page, nil
}

// GetAllVacancies walks every result page for the query and returns the
// mapped domain vacancies. Page size in params is ignored; full pages are
// always requested.
func (c *Client) GetAllVacancies(ctx context.Context, params SearchParams) ([]models.Vacancy, error) {
	var out []models.Vacancy

	params.Page = 0
	params.PerPage = 100
	for {
		page, err := c.GetVacancies(ctx, params)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			out = append(out, item.ToModel())
		}
		params.Page++
		if params.Page >= page.Pages {
			break
		}
	}
	return out, nil
}

// ToModel maps an external API vacancy to the domain model.
func (v Vacancy) ToModel() models.Vacancy {
	sourceID, _ := strconv.ParseInt(v.ID, 10, 64)

	m := models.Vacancy{
		SourceName:  SourceName,
		SourceID:    sourceID,
		URL:         v.URL,
		Name:        v.Name,
		Description: joinSnippet(v.Snippet.Requirement, v.Snippet.Responsibility),
		Area:        v.Area.Name,
		Employer:    v.Employer.Name,
		Experience:  v.Experience.Name,
		Employment:  v.Employment.Name,
		Schedule:    v.Schedule.Name,
		HasTest:     v.HasTest,
		IsArchived:  v.Archived,
	}
	if v.Salary != nil {
		m.SalaryFrom = v.Salary.From
		m.SalaryTo = v.Salary.To
		m.SalaryCurrency = v.Salary.Currency
	}
	if t, err := time.Parse(publishedAtLayout, v.PublishedAt); err == nil {
		m.PublishedAt = t.UTC()
	}
	return m
}

func joinSnippet(requirement, responsibility string) string {
	switch {
	case requirement == "":
		return responsibility
	case responsibility == "":
		return requirement
	default:
		return requirement + "\n" + responsibility
	}
}
