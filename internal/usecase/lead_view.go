package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xavierca1/visa-leads/internal/entity"
)

const (
	StatusFilterAll = "all"

	DefaultPageSize = 8
	MaxPageSize     = 100
)

type SortRule string

const (
	// SortStatusThenNewest lists Pending leads before Reached Out ones, newest first within each.
	SortStatusThenNewest SortRule = "status"
	// SortNewest ignores status and lists the most recent submissions first.
	SortNewest SortRule = "newest"
)

func ParseSortRule(s string) (SortRule, error) {
	switch SortRule(s) {
	case "":
		return SortStatusThenNewest, nil
	case SortStatusThenNewest, SortNewest:
		return SortRule(s), nil
	}
	return "", fmt.Errorf("unknown sort rule %q", s)
}

// ParseStatusFilter accepts "all" (or empty) and every lead status.
func ParseStatusFilter(s string) (string, error) {
	if s == "" || s == StatusFilterAll {
		return StatusFilterAll, nil
	}
	st, err := entity.ParseStatus(s)
	if err != nil {
		return "", err
	}
	return string(st), nil
}

type LeadQuery struct {
	Search   string   `json:"search"`
	Status   string   `json:"status"`
	Sort     SortRule `json:"sort"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
}

type LeadView struct {
	Leads      []entity.Lead `json:"leads"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
	TotalCount int           `json:"totalCount"`
	Query      LeadQuery     `json:"query"`
}

// BuildLeadView filters, sorts and paginates a snapshot of the lead collection.
// It keeps no state: callers rebuild the view whenever the collection or the
// query changes. The input slice is not modified.
func BuildLeadView(leads []entity.Lead, q LeadQuery) LeadView {
	q = normalizeQuery(q)
	term := strings.ToLower(q.Search)

	matched := make([]entity.Lead, 0, len(leads))
	for _, lead := range leads {
		if matchesStatus(lead, q.Status) && matchesSearch(lead, term) {
			matched = append(matched, lead.Clone())
		}
	}

	sortLeads(matched, q.Sort)

	total := len(matched)
	totalPages := (total + q.PageSize - 1) / q.PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > totalPages {
		q.Page = totalPages
	}

	start := (q.Page - 1) * q.PageSize
	end := start + q.PageSize
	if end > total {
		end = total
	}

	return LeadView{
		Leads:      matched[start:end],
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
		TotalCount: total,
		Query:      q,
	}
}

// normalizeQuery applies the defaults. An unknown sort rule falls back to
// SortStatusThenNewest; callers that must reject it use ParseSortRule first.
func normalizeQuery(q LeadQuery) LeadQuery {
	q.Search = strings.TrimSpace(q.Search)
	if q.Status == "" {
		q.Status = StatusFilterAll
	}
	if q.Sort != SortNewest {
		q.Sort = SortStatusThenNewest
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

func matchesStatus(lead entity.Lead, filter string) bool {
	return filter == StatusFilterAll || string(lead.Status) == filter
}

func matchesSearch(lead entity.Lead, term string) bool {
	if term == "" {
		return true
	}
	candidates := []string{lead.FirstName, lead.LastName, lead.Email}
	if lead.Country != "" {
		candidates = append(candidates, lead.Country)
		if label, ok := entity.CountryLabel(lead.Country); ok {
			candidates = append(candidates, label)
		}
	}
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), term) {
			return true
		}
	}
	return false
}

var statusRank = map[entity.Status]int{
	entity.StatusPending:    0,
	entity.StatusReachedOut: 1,
}

// sortLeads is stable: leads that compare equal keep their store order.
func sortLeads(leads []entity.Lead, rule SortRule) {
	sort.SliceStable(leads, func(i, j int) bool {
		a, b := leads[i], leads[j]
		if rule == SortStatusThenNewest {
			ra, rb := statusRank[a.Status], statusRank[b.Status]
			if ra != rb {
				return ra < rb
			}
		}
		return a.SubmittedAt.After(b.SubmittedAt)
	})
}
