package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/linkscout/internal/browser"
	"github.com/xkilldash9x/linkscout/internal/extract"
)

const (
	employeeCardContainer = ".org-people-profile-card__profile-info"
	companySearchURL      = "https://www.linkedin.com/search/results/companies/"

	// The people page grows through infinite scroll plus a show-more button;
	// thirty rounds carries well past any reasonable max_employees.
	employeeMaxRounds   = 30
	defaultMaxEmployees = 30
)

var showMoreEmployeesCascade = []browser.Strategy{
	{
		Kind:        browser.KindCSS,
		Selector:    "button.scaffold-finite-scroll__load-button",
		Timeout:     3 * time.Second,
		Description: "show-more-results button",
	},
}

var peopleTabCascade = []browser.Strategy{
	{
		Kind:        browser.KindCSS,
		Selector:    `a[data-control-name="people"]`,
		Timeout:     5 * time.Second,
		Description: "people tab by control name",
	},
	{
		Kind:        browser.KindCSS,
		Selector:    `a[href$="/people/"]`,
		Timeout:     3 * time.Second,
		Description: "people tab by href suffix",
	},
	{
		Kind:        browser.KindText,
		Selector:    "People",
		Scope:       "a",
		Timeout:     3 * time.Second,
		Description: "people tab by anchor text",
	},
	{
		Kind:        browser.KindCSS,
		Selector:    `nav a[href*="/people"]`,
		Timeout:     3 * time.Second,
		Description: "people tab inside nav",
	},
}

var searchInputCascade = []browser.Strategy{
	{
		Kind:        browser.KindCSS,
		Selector:    `input[placeholder*="Search"]`,
		Timeout:     5 * time.Second,
		Description: "search input by placeholder",
	},
	{
		Kind:        browser.KindCSS,
		Selector:    `input[aria-label*="Search"]`,
		Timeout:     3 * time.Second,
		Description: "search input by aria label",
	},
	{
		Kind:        browser.KindCSS,
		Selector:    ".search-global-typeahead__input",
		Timeout:     3 * time.Second,
		Description: "global typeahead input",
	},
}

var companyResultCascade = []browser.Strategy{
	{
		Kind:        browser.KindCSS,
		Selector:    `a[data-test-app-aware-link][href*="/company/"]`,
		Timeout:     10 * time.Second,
		Description: "first company result by app-aware link",
	},
	{
		Kind:        browser.KindCSS,
		Selector:    `a[href*="/company/"]`,
		Timeout:     5 * time.Second,
		Description: "first company result by href",
	},
}

// ExtractCompanyEmployees navigates to a company people page and harvests the
// visible employee cards as CSV. The page is reached through one of three
// routes: a direct people URL, a company URL whose People tab gets clicked,
// or a company-name search.
func (t *Toolset) ExtractCompanyEmployees(ctx context.Context, p CompanyEmployeesParams) string {
	username, password, ok := t.credentials(p.Username, p.Password)
	if !ok {
		return msgMissingCredentials
	}
	if p.CompanyName == "" && p.CompanyURL == "" {
		return "Error: Either company_name or company_url must be provided."
	}
	maxEmployees := p.MaxEmployees
	if maxEmployees <= 0 {
		maxEmployees = defaultMaxEmployees
	}

	t.logger.Info("Extracting company employees.",
		zap.String("company_name", p.CompanyName),
		zap.String("company_url", p.CompanyURL),
		zap.Int("max_employees", maxEmployees))

	return t.withBrowser(ctx, username, password, func(ctx context.Context, session *browser.Session) (string, error) {
		if err := t.navigateToPeoplePage(ctx, session, p.CompanyName, p.CompanyURL); err != nil {
			if errors.Is(err, browser.ErrNotFound) {
				target := p.CompanyName
				if target == "" {
					target = p.CompanyURL
				}
				return fmt.Sprintf("Failed to navigate to people page for company: %s", target), nil
			}
			return "", err
		}

		src := browser.NewPageSource(session, employeeCardContainer, showMoreEmployeesCascade)
		records, err := t.extractor.Run(ctx, src, extract.EmployeeBuilder{}, maxEmployees, employeeMaxRounds)
		if err != nil {
			return "", err
		}
		if len(records) == 0 {
			return "No results found.", nil
		}
		return extract.RenderCSV(extract.EmployeeHeader, records), nil
	})
}

// navigateToPeoplePage lands the session on the company's people page.
// Returns browser.ErrNotFound when a navigation step's cascade exhausts,
// which the caller reports as a soft failure.
func (t *Toolset) navigateToPeoplePage(ctx context.Context, session *browser.Session, companyName, companyURL string) error {
	resolver := browser.NewResolver(session, t.logger)

	// Route 1: a people URL goes straight there.
	if companyURL != "" && strings.Contains(companyURL, "/people") {
		if err := session.Navigate(ctx, companyURL); err != nil {
			return err
		}
		return session.Settle(ctx)
	}

	// Route 2: a company URL needs one hop through the People tab.
	if companyURL != "" && strings.Contains(companyURL, "/company/") {
		if err := session.Navigate(ctx, companyURL); err != nil {
			return err
		}
		if err := session.Settle(ctx); err != nil {
			return err
		}
		return t.clickPeopleTab(ctx, session, resolver)
	}

	// Route 3: search for the company by name and take the first result.
	if err := session.Navigate(ctx, companySearchURL); err != nil {
		return err
	}
	if err := session.Settle(ctx); err != nil {
		return err
	}

	input, err := resolver.Resolve(ctx, searchInputCascade)
	if err != nil {
		return err
	}
	if err := session.FillMatch(ctx, input, companyName); err != nil {
		return err
	}
	if err := session.PressEnter(ctx); err != nil {
		return err
	}
	if err := session.Settle(ctx); err != nil {
		return err
	}

	result, err := resolver.Resolve(ctx, companyResultCascade)
	if err != nil {
		return err
	}
	if _, err := session.ClickMatch(ctx, result); err != nil {
		return err
	}
	if err := session.Settle(ctx); err != nil {
		return err
	}
	return t.clickPeopleTab(ctx, session, resolver)
}

func (t *Toolset) clickPeopleTab(ctx context.Context, session *browser.Session, resolver *browser.Resolver) error {
	tab, err := resolver.Resolve(ctx, peopleTabCascade)
	if err != nil {
		return err
	}
	clicked, err := session.ClickMatch(ctx, tab)
	if err != nil {
		return err
	}
	if !clicked {
		return browser.ErrNotFound
	}
	return session.Settle(ctx)
}
