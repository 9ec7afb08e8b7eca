package database

import (
	"context"
	"fmt"

	"github.com/xavierca1/visa-leads/internal/entity"
)

// DemoLeads are the sample submissions loaded when LEADS_SEED_DEMO is set.
var DemoLeads = []entity.Lead{
	{FirstName: "Jorge", LastName: "Ruiz", Email: "jorge.ruiz@example.com", LinkedInProfile: "https://linkedin.com/in/jorgeruiz", VisasOfInterest: []entity.VisaType{entity.VisaO1}, Country: "mexico"},
	{FirstName: "Bahar", LastName: "Zamir", Email: "bahar@example.com", LinkedInProfile: "https://linkedin.com/in/baharzamir", VisasOfInterest: []entity.VisaType{entity.VisaEB1A, entity.VisaO1}, Country: "other"},
	{FirstName: "Mary", LastName: "Lopez", Email: "mary.lopez@example.com", LinkedInProfile: "https://marylopez.dev", VisasOfInterest: []entity.VisaType{entity.VisaEB2NIW}, Country: "brazil"},
	{FirstName: "Li", LastName: "Zijin", Email: "li.zijin@example.com", LinkedInProfile: "https://linkedin.com/in/lizijin", VisasOfInterest: []entity.VisaType{entity.VisaO1, entity.VisaEB2NIW}, Country: "china"},
	{FirstName: "Mark", LastName: "Antonov", Email: "mark.antonov@example.com", LinkedInProfile: "https://linkedin.com/in/markantonov", VisasOfInterest: []entity.VisaType{entity.VisaUnsure}, Country: "russia"},
	{FirstName: "Jane", LastName: "Ma", Email: "jane.ma@example.com", LinkedInProfile: "https://linkedin.com/in/janema", VisasOfInterest: []entity.VisaType{entity.VisaEB1A}, Country: "canada"},
	{FirstName: "Anand", LastName: "Jain", Email: "anand.jain@example.com", LinkedInProfile: "https://linkedin.com/in/anandjain", VisasOfInterest: []entity.VisaType{entity.VisaEB2NIW, entity.VisaEB1A}, Country: "india"},
	{FirstName: "Anna", LastName: "Voronova", Email: "anna.voronova@example.com", LinkedInProfile: "https://linkedin.com/in/annavoronova", VisasOfInterest: []entity.VisaType{entity.VisaO1}, Country: "france"},
}

// SeedDemoLeads inserts DemoLeads through repo. Every other demo lead is then
// marked as reached out so both statuses show up in the admin list.
func SeedDemoLeads(ctx context.Context, repo entity.LeadRepositoryInterface) (int, error) {
	for i, demo := range DemoLeads {
		lead := demo.Clone()
		if err := repo.Create(ctx, &lead); err != nil {
			return i, fmt.Errorf("seed lead %s: %w", lead.Email, err)
		}
		if i%2 == 1 {
			if _, err := repo.UpdateStatus(ctx, lead.ID, entity.StatusReachedOut); err != nil {
				return i, fmt.Errorf("seed status of %s: %w", lead.Email, err)
			}
		}
	}
	return len(DemoLeads), nil
}
